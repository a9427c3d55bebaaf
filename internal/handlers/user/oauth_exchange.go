package user

import (
	"net/http"
	"velora_back_end/internal/auth"
	"velora_back_end/internal/config"

	"github.com/gin-gonic/gin"
)

//
// 🔗 GET /api/auth/google/url — URL de consentement Google (clients mobiles,
// qui ouvrent l'URL dans un navigateur puis passent par /exchange)
//
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'state' requis"})
		return
	}

	provider := auth.OAuthProvider{Name: "google", Config: config.GoogleOAuthConfig}

	c.JSON(http.StatusOK, gin.H{"url": provider.GetAuthURL(state)})
}

//
// 🔄 POST /api/auth/google/exchange — échange d'un code OAuth (clients mobiles,
// qui ne passent pas par le flux cookie de gothic)
//
func (h *Handler) GoogleTokenExchange(c *gin.Context) {
	var input struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code OAuth requis"})
		return
	}

	provider := auth.OAuthProvider{Name: "google", Config: config.GoogleOAuthConfig}

	token, err := provider.Exchange(input.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code OAuth invalide"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token.AccessToken,
		"expiry":       token.Expiry,
	})
}

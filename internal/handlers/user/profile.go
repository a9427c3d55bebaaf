package user

import (
	"net/http"
	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

//
// 📞 PUT /api/user — mise à jour du numéro de téléphone (authentifié)
//
func (h *Handler) UpdatePhoneNumber(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	var input struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Numéro de téléphone requis"})
		return
	}

	ctx := c.Request.Context()

	// Le numéro ne se définit qu'une seule fois
	rows, err := h.Graph.Run(ctx, database.CypherUserByID, map[string]any{"id": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	if phone, ok := rows[0]["phoneNumber"].(string); ok && phone != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Le numéro de téléphone ne peut être modifié qu'une seule fois"})
		return
	}

	if _, err := h.Graph.RunWrite(ctx, database.CypherSetUserPhone, map[string]any{
		"userId":      userID,
		"phoneNumber": input.PhoneNumber,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Numéro de téléphone mis à jour", "phoneNumber": input.PhoneNumber})
}

//
// 🔑 PUT /api/user/password — changement de mot de passe (authentifié)
//
func (h *Handler) UpdatePassword(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.CurrentPassword == "" || input.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mot de passe actuel et nouveau requis"})
		return
	}

	ctx := c.Request.Context()

	rows, err := h.Graph.Run(ctx, database.CypherUserByID, map[string]any{"id": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	user := userFromRow(rows[0])

	// Le mot de passe stocké vit sur le nœud, pas dans la projection par ID
	full, err := h.Graph.Run(ctx, database.CypherUserByEmail, map[string]any{
		"email":    user.Email,
		"provider": "local",
	})
	if err != nil || len(full) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	user = userFromRow(full[0])

	valid, _ := utils.VerifyPassword(input.CurrentPassword, user.Password)
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe actuel incorrect"})
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	if _, err := h.Graph.RunWrite(ctx, database.CypherSetUserPassword, map[string]any{
		"userId":   userID,
		"password": hashed,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	// Les vérifications en cache pour l'ancien mot de passe ne valent plus rien
	cache.InvalidateAuthCache(user.Email)

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe mis à jour avec succès"})
}

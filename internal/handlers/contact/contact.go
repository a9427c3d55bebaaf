package contact

import (
	"net/http"
	"velora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

//
// ✉️ POST /api/contact — formulaire de contact relayé par SMTP
//
func SendMessage(c *gin.Context) {
	var input struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if input.Name == "" || input.Email == "" || input.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}

	if err := utils.SendContactEmail(input.Name, input.Email, input.Message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi du message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message envoyé avec succès"})
}

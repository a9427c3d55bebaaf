package product

import (
	"net/http"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

//
// 🗂️ GET /api/categories — toutes les catégories (nœuds Category du graphe)
//
func (h *Handler) GetAllCategories(c *gin.Context) {
	rows, err := h.Graph.Run(c.Request.Context(), database.CypherAllCategories, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		cat := models.Category{}
		if name, ok := row["name"].(string); ok {
			cat.Name = name
		}
		if description, ok := row["description"].(string); ok {
			cat.Description = description
		}
		if imageURL, ok := row["imageUrl"].(string); ok {
			cat.ImageURL = imageURL
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, categories)
}

package product

import (
	"net/http"
	"strconv"
	"strings"
	"velora_back_end/internal/database"
	"velora_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

//
// 🖼️ POST /api/products/:id/images — upload d'une image produit vers MinIO (admin)
//
func (h *Handler) UploadProductImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'ID invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier 'image' requis"})
		return
	}

	url, err := services.UploadProductImage(c.Request.Context(), id, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	// ✅ Ajoute l'URL sur le nœud produit
	rows, err := h.Graph.RunWrite(c.Request.Context(), database.CypherAppendProductImage, map[string]any{
		"id":  id,
		"url": url,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	invalidateCatalogCache()

	c.JSON(http.StatusOK, gin.H{"message": "Image ajoutée avec succès", "url": url})
}

//
// 🔗 GET /api/products/:id/images/*object — URL signée temporaire
//
func (h *Handler) GetProductImageURL(c *gin.Context) {
	object := strings.TrimPrefix(c.Param("object"), "/")
	if object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Objet requis"})
		return
	}

	url, err := services.PresignedImageURL(c.Request.Context(), object)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

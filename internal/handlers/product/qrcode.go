package product

import (
	"net/http"
	"os"
	"strconv"
	"velora_back_end/internal/database"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

//
// 📱 GET /api/products/:id/qrcode — QR code de partage vers la fiche produit
//
func (h *Handler) ProductQRCode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'ID invalide"})
		return
	}

	// Ne génère pas de QR vers un produit inexistant
	rows, err := h.Graph.Run(c.Request.Context(), database.CypherProductByID, map[string]any{"id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	png, err := qrcode.Encode(frontend+"/productDetail/"+strconv.FormatInt(id, 10), qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

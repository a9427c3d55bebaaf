package product

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

const allProductsCacheKey = "products:all"

// Handler expose le catalogue produits au-dessus du graphe
type Handler struct {
	Graph database.GraphRunner
}

func NewHandler(graph database.GraphRunner) *Handler {
	return &Handler{Graph: graph}
}

//
// 📦 GET /api/products — tout le catalogue (avec catégorie via BELONGS_TO)
//
func (h *Handler) GetAllProducts(c *gin.Context) {
	ctx := c.Request.Context()

	// ✅ Vérifie le cache Redis
	if database.RedisClient != nil {
		if val, err := database.RedisClient.Get(ctx, allProductsCacheKey).Result(); err == nil && val != "" {
			var cached []models.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	rows, err := h.Graph.Run(ctx, database.CypherAllProducts, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		if projection, ok := row["product"].(map[string]any); ok {
			products = append(products, productFromProjection(projection))
		}
	}

	// ✅ Met en cache (10 min)
	if database.RedisClient != nil {
		if data, err := json.Marshal(products); err == nil {
			database.RedisClient.Set(ctx, allProductsCacheKey, data, 10*time.Minute)
		}
	}

	c.JSON(http.StatusOK, products)
}

//
// 🔍 GET /api/products/:id — fiche produit
//
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'ID invalide"})
		return
	}

	// ✅ Vérifie le cache Redis
	if cached, ok := cache.GetProduct(id); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.Graph.Run(c.Request.Context(), database.CypherProductByID, map[string]any{"id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	projection, ok := rows[0]["product"].(map[string]any)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	product := productFromProjection(projection)
	cache.SetProduct(product)

	c.JSON(http.StatusOK, product)
}

//
// 🟢 POST /api/products — création (admin)
//
func (h *Handler) CreateProduct(c *gin.Context) {
	var p models.Product

	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if p.ID == 0 || p.Name == "" || p.Price == 0 || p.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}

	params := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"price":       p.Price,
		"rating":      nilable(p.Rating),
		"ratingCount": nilable(p.RatingCount),
		"description": p.Description,
		"category":    p.Category,
		"features":    p.Features,
		"images":      p.Images,
	}

	if _, err := h.Graph.RunWrite(c.Request.Context(), database.CypherCreateProduct, params); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// 🔄 Indexation Elasticsearch + invalidation du cache catalogue
	go services.IndexProduct(p)
	invalidateCatalogCache()

	c.JSON(http.StatusCreated, gin.H{"message": "Produit créé avec succès", "product": p})
}

//
// 🔁 PUT /api/products/:id — mise à jour partielle (admin)
//
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'ID invalide"})
		return
	}

	var properties map[string]any
	if err := c.ShouldBindJSON(&properties); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	// L'identité du nœud ne se réécrit pas
	delete(properties, "id")

	rows, err := h.Graph.RunWrite(c.Request.Context(), database.CypherUpdateProduct, map[string]any{
		"id":         id,
		"properties": properties,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	go services.ReindexProduct(h.Graph, id)
	cache.InvalidateProduct(id)
	invalidateCatalogCache()

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour avec succès"})
}

//
// ❌ DELETE /api/products/:id — suppression (admin)
//
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'ID invalide"})
		return
	}

	if _, err := h.Graph.RunWrite(c.Request.Context(), database.CypherDeleteProduct, map[string]any{"id": id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	go services.RemoveProductFromIndex(id)
	cache.InvalidateProduct(id)
	invalidateCatalogCache()

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé avec succès"})
}

func invalidateCatalogCache() {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(context.Background(), allProductsCacheKey)
}

// productFromProjection convertit une projection Cypher (déjà normalisée) en Product
func productFromProjection(row map[string]any) models.Product {
	p := models.Product{}

	if id, ok := row["id"].(int64); ok {
		p.ID = id
	}
	if name, ok := row["name"].(string); ok {
		p.Name = name
	}
	switch price := row["price"].(type) {
	case float64:
		p.Price = price
	case int64:
		p.Price = float64(price)
	}
	if rating, ok := row["rating"].(float64); ok {
		p.Rating = &rating
	}
	if count, ok := row["ratingCount"].(int64); ok {
		p.RatingCount = &count
	}
	if description, ok := row["description"].(string); ok {
		p.Description = description
	}
	if category, ok := row["category"].(string); ok {
		p.Category = category
	}
	p.Features = stringSlice(row["features"])
	p.Images = stringSlice(row["images"])

	return p
}

func stringSlice(v any) []string {
	values, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func nilable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

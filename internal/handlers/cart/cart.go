package cart

import (
	"net/http"
	"sync"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handler expose les opérations du panier au-dessus du graphe.
// Construit explicitement (pas de singleton) pour pouvoir injecter un
// GraphRunner factice dans les tests.
type Handler struct {
	Graph  database.GraphRunner
	Events *redis.Client // pubsub pour la synchro WebSocket (optionnel)

	locks sync.Map // userId → *sync.Mutex : un seul écrivain par panier
}

func NewHandler(graph database.GraphRunner, events *redis.Client) *Handler {
	return &Handler{Graph: graph, Events: events}
}

// lockFor sérialise les mutations concurrentes sur un même panier
func (h *Handler) lockFor(userID string) *sync.Mutex {
	mu, _ := h.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// notify publie un changement de panier sur le canal Redis du user
func (h *Handler) notify(c *gin.Context, userID, event string) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(c.Request.Context(), "cart:"+userID, event)
}

//
// 🛒 GET /api/cart — contenu du panier (header user-id)
//
func (h *Handler) GetCart(c *gin.Context) {
	userID := c.GetHeader("user-id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur requis"})
		return
	}

	rows, err := h.Graph.Run(c.Request.Context(), database.CypherGetCart, map[string]any{"userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	// Panier inexistant = panier vide, jamais une erreur
	items := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, lineItemFromRow(row))
	}

	c.JSON(http.StatusOK, items)
}

//
// 🟢 POST /api/cart — ajout d'un item (le client envoie un DELTA de quantité,
// le serveur incrémente dans une transaction unique)
//
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		UserID    string `json:"userId"`
		ProductID int64  `json:"productId"`
		Quantity  int64  `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if input.UserID == "" || input.ProductID == 0 || input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}

	lock := h.lockFor(input.UserID)
	lock.Lock()
	defer lock.Unlock()

	// MERGE du chemin User/Cart/Product + incrément de la relation, en bloc
	rows, err := h.Graph.RunWrite(c.Request.Context(), database.CypherAddToCart, map[string]any{
		"userId":    input.UserID,
		"productId": input.ProductID,
		"quantity":  input.Quantity,
	})
	if err != nil || len(rows) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}

	h.notify(c, input.UserID, "updated")
	c.JSON(http.StatusOK, lineItemFromRow(rows[0]))
}

//
// 🔁 PUT /api/cart — quantité absolue (SET). Quantité 0 = suppression de la ligne
//
func (h *Handler) UpdateQuantity(c *gin.Context) {
	var input struct {
		UserID    string `json:"userId"`
		ProductID int64  `json:"productId"`
		Quantity  *int64 `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if input.UserID == "" || input.ProductID == 0 || input.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}
	if *input.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	lock := h.lockFor(input.UserID)
	lock.Lock()
	defer lock.Unlock()

	params := map[string]any{
		"userId":    input.UserID,
		"productId": input.ProductID,
	}

	// Une ligne à 0 est supprimée, jamais conservée
	if *input.Quantity == 0 {
		rows, err := h.Graph.RunWrite(c.Request.Context(), database.CypherRemoveFromCart, params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
			return
		}
		if len(rows) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item introuvable dans le panier"})
			return
		}

		h.notify(c, input.UserID, "updated")
		c.JSON(http.StatusOK, gin.H{"message": "Produit retiré du panier", "productId": input.ProductID})
		return
	}

	params["quantity"] = *input.Quantity
	rows, err := h.Graph.RunWrite(c.Request.Context(), database.CypherSetCartQuantity, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item introuvable dans le panier"})
		return
	}

	h.notify(c, input.UserID, "updated")
	c.JSON(http.StatusOK, lineItemFromRow(rows[0]))
}

//
// ❌ DELETE /api/cart — supprime la relation CONTAINS
//
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var input struct {
		UserID    string `json:"userId"`
		ProductID int64  `json:"productId"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if input.UserID == "" || input.ProductID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}

	lock := h.lockFor(input.UserID)
	lock.Lock()
	defer lock.Unlock()

	rows, err := h.Graph.RunWrite(c.Request.Context(), database.CypherRemoveFromCart, map[string]any{
		"userId":    input.UserID,
		"productId": input.ProductID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item introuvable dans le panier"})
		return
	}

	h.notify(c, input.UserID, "updated")
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé du panier"})
}

// lineItemFromRow normalise une ligne du graphe en CartItem
func lineItemFromRow(row map[string]any) models.CartItem {
	item := models.CartItem{
		ProductID: asInt64(row["productId"]),
		Quantity:  asInt64(row["quantity"]),
		Price:     asFloat64(row["price"]),
	}
	if name, ok := row["name"].(string); ok {
		item.Name = name
	}
	if image, ok := row["image"].(string); ok {
		item.Image = image
	}
	return item
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

package cart

import (
	"log"
	"net/http"
	"time"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket gère la synchronisation temps réel du panier entre onglets :
// chaque mutation publie sur le canal Redis du user, on repousse alors
// l'état courant du graphe avec le total dérivé
func (h *Handler) CartWebSocket(c *gin.Context) {
	userID := c.Query("user-id")
	if userID == "" {
		userID = c.GetHeader("user-id")
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur requis"})
		return
	}

	if h.Events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Synchronisation indisponible"})
		return
	}

	// Upgrade vers WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	// S'abonner au canal Redis pour ce user
	pubsub := h.Events.Subscribe(ctx, "cart:"+userID)
	defer pubsub.Close()

	ch := pubsub.Channel()

	// Envoyer un message de connexion
	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	// Boucle d'écoute
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			rows, err := h.Graph.Run(ctx, database.CypherGetCart, map[string]any{"userId": userID})
			if err != nil {
				log.Printf("❌ Erreur lecture panier pour la synchro: %v", err)
				continue
			}

			items := make([]models.CartItem, 0, len(rows))
			total := 0.0
			for _, row := range rows {
				item := lineItemFromRow(row)
				total += item.Price * float64(item.Quantity)
				items = append(items, item)
			}

			response := map[string]interface{}{
				"type":  "cart_updated",
				"items": items,
				"total": total,
				"count": len(items),
			}

			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

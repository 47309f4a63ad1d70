package product

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const stockAlertChannel = "alerts:stock"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// StockAlertsWebSocket : GET /api/admin/inventory/alerts/live
// Pousse les alertes de stock au back-office en temps réel via Redis pub/sub.
func StockAlertsWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, stockAlertChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Flux d'alertes stock activé",
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
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

// stockAlertMessage sérialise l'alerte telle qu'elle circule sur le canal
func stockAlertMessage(a models.StockAlert) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":  "stock_alert",
		"alert": a,
	})
}

// publishStockAlert notifie les back-offices connectés (best effort)
func publishStockAlert(a models.StockAlert) {
	payload, err := stockAlertMessage(a)
	if err != nil {
		return
	}
	if err := database.Redis.Publish(context.Background(), stockAlertChannel, payload).Err(); err != nil {
		log.Printf("⚠️ Erreur publication alerte stock: %v", err)
	}
}

package order

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// Cancel annule une commande pour son propriétaire (ou un admin) et restitue
// le stock de chaque ligne portant une variation. Les restitutions sont des
// CAS individuels : un échec est loggé mais n'annule pas l'annulation.
func Cancel(ctx context.Context, store Store, orderID gocql.UUID, userID string, isAdmin bool) (*models.Order, error) {
	o, err := store.GetOrderScoped(ctx, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if o.Status == models.OrderStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !models.IsCancellable(o.Status) {
		return nil, ErrNotCancellable
	}

	if err := store.SetOrderStatus(ctx, orderID, models.OrderStatusCancelled, o.PaymentStatus); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatusCancelled
	o.UpdatedAt = time.Now()

	for _, item := range o.Items {
		if item.VariationID == nil {
			continue
		}
		if err := store.ReleaseStock(ctx, *item.VariationID, item.Quantity); err != nil {
			log.Printf("❌ Échec restitution stock variation %s (+%d) pour commande %s: %v",
				*item.VariationID, item.Quantity, o.OrderNumber, err)
			continue
		}

		variationID := *item.VariationID
		store.RecordStockMovement(ctx, models.StockMovement{
			ID:          gocql.TimeUUID(),
			ProductID:   item.ProductID,
			VariationID: &variationID,
			Type:        "return",
			Quantity:    item.Quantity,
			Reason:      "cancellation " + o.OrderNumber,
			OrderID:     &orderID,
			UserID:      userID,
			CreatedAt:   time.Now(),
		})
	}

	return o, nil
}

// CancelOrder : PUT /api/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	isAdmin := c.GetString("role") == models.RoleAdmin

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := Cancel(c.Request.Context(), defaultStore, orderID, userID, isAdmin)
	if err != nil {
		status, msg := orderErrorResponse(err)
		utils.RespondError(c, status, msg)
		return
	}

	log.Printf("✅ Commande %s annulée par %s", o.OrderNumber, userID)
	utils.RespondMessage(c, http.StatusOK, o, "Order cancelled")
}

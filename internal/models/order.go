package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Cycle de vie d'une commande : pending → processing → shipped → delivered,
// ou cancelled depuis pending/processing. delivered et cancelled sont terminaux.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

type Order struct {
	ID              gocql.UUID   `json:"id"`
	UserID          string       `json:"user_id"`
	OrderNumber     string       `json:"order_number"`
	Items           []OrderItem  `json:"items"`
	ShippingInfo    ShippingInfo `json:"shipping_info"`
	TotalAmount     float64      `json:"total_amount"`
	Status          string       `json:"status"`
	PaymentStatus   string       `json:"payment_status"`
	PaymentIntentID string       `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// OrderItem : ligne de commande avec prix unitaire figé au moment de l'achat
// (snapshot — les changements de prix catalogue ultérieurs n'affectent pas la commande).
type OrderItem struct {
	ProductID   gocql.UUID  `json:"product_id"`
	VariationID *gocql.UUID `json:"variation_id,omitempty"`
	Name        string      `json:"name"`
	SKU         string      `json:"sku,omitempty"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unit_price"`
}

type ShippingInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// CalcOrderTotal calcule le montant total à partir des prix unitaires figés.
func CalcOrderTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// IsValidOrderStatus vérifie qu'un statut fait partie du cycle de vie.
func IsValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsAdjacentTransition indique si from → to est une transition directe du cycle
// de vie. Les admins peuvent forcer une transition non adjacente, mais elle est
// alors consignée dans l'audit (voir handlers/order.UpdateOrderStatus).
func IsAdjacentTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsCancellable : seules les commandes pending/processing peuvent être annulées.
func IsCancellable(status string) bool {
	return status == OrderStatusPending || status == OrderStatusProcessing
}

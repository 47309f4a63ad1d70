package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID                gocql.UUID `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Description       string     `json:"description"`
	Price             float64    `json:"price"`
	Stock             int        `json:"stock"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	SKU               string     `json:"sku"`
	CategoryID        gocql.UUID `json:"category_id"`
	ImageURLs         []string   `json:"image_urls"`
	Tags              []string   `json:"tags"`
	IsActive          bool       `json:"is_active"`
	HasVariations     bool       `json:"has_variations"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ProductVariation : configuration achetable d'un produit (taille/couleur...)
// avec son propre prix et son propre stock. Le stock ne descend jamais
// sous zéro : toute décrémentation passe par un CAS (voir handlers/order).
type ProductVariation struct {
	ID        gocql.UUID        `json:"id"`
	ProductID gocql.UUID        `json:"product_id"`
	SKU       string            `json:"sku"`
	Price     float64           `json:"price"`
	Stock     int               `json:"stock"`
	Options   map[string]string `json:"options"` // {"size": "L", "color": "red"}
	IsActive  bool              `json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type StockMovement struct {
	ID          gocql.UUID  `json:"id"`
	ProductID   gocql.UUID  `json:"product_id"`
	VariationID *gocql.UUID `json:"variation_id,omitempty"`
	Type        string      `json:"type"` // "sale", "restock", "return", "adjustment"
	Quantity    int         `json:"quantity"`
	PrevStock   int         `json:"prev_stock"`
	NewStock    int         `json:"new_stock"`
	Reason      string      `json:"reason"`
	OrderID     *gocql.UUID `json:"order_id,omitempty"`
	UserID      string      `json:"user_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

type StockAlert struct {
	ID             gocql.UUID `json:"id"`
	ProductID      gocql.UUID `json:"product_id"`
	ProductName    string     `json:"product_name"`
	CurrentStock   int        `json:"current_stock"`
	ThresholdStock int        `json:"threshold_stock"`
	AlertType      string     `json:"alert_type"` // "low_stock", "out_of_stock"
	IsResolved     bool       `json:"is_resolved"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

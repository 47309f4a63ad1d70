package order

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// Store utilisé par les handlers HTTP (remplacé par un stub dans les tests).
var defaultStore Store = scyllaStore{}

// ItemRequest : ligne du panier telle que demandée par le client. Le prix
// unitaire n'est jamais pris du client — il est résolu depuis le catalogue.
type ItemRequest struct {
	ProductID   gocql.UUID
	VariationID *gocql.UUID
	Quantity    int
}

type reservation struct {
	variationID gocql.UUID
	productID   gocql.UUID
	qty         int
	prevStock   int
}

// PlaceOrder exécute le flux complet de création de commande :
//  1. validation + résolution des prix catalogue (aucune écriture — tout-ou-rien)
//  2. réservation atomique du stock par variation (CAS, jamais négatif)
//  3. numéro de commande unique (LWT, 3 tentatives en cas de collision)
//  4. écriture de la commande puis de ses lignes
//
// Toute écriture échouée déclenche la compensation symétrique : suppression de
// la commande ET restitution de chaque réservation de stock déjà posée.
func PlaceOrder(ctx context.Context, store Store, userID string, requested []ItemRequest, shipping models.ShippingInfo) (*models.Order, error) {
	if len(requested) == 0 {
		return nil, ErrEmptyOrder
	}

	// --- Phase 1 : validation et prix figés, avant toute écriture ---
	items := make([]models.OrderItem, 0, len(requested))
	for _, req := range requested {
		if req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		if req.VariationID != nil {
			variation, err := store.GetVariation(ctx, *req.VariationID)
			if err != nil {
				return nil, err
			}
			if !variation.IsActive {
				return nil, &VariationNotFoundError{VariationID: *req.VariationID}
			}
			if variation.Stock < req.Quantity {
				return nil, &InsufficientStockError{
					VariationID: *req.VariationID,
					Available:   variation.Stock,
					Requested:   req.Quantity,
				}
			}

			product, err := store.GetProduct(ctx, variation.ProductID)
			if err != nil {
				return nil, err
			}

			items = append(items, models.OrderItem{
				ProductID:   variation.ProductID,
				VariationID: req.VariationID,
				Name:        product.Name,
				SKU:         variation.SKU,
				Quantity:    req.Quantity,
				UnitPrice:   variation.Price,
			})
			continue
		}

		product, err := store.GetProduct(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, &ProductNotFoundError{ProductID: req.ProductID}
		}

		items = append(items, models.OrderItem{
			ProductID: req.ProductID,
			Name:      product.Name,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
		})
	}

	totalAmount := models.CalcOrderTotal(items)

	// --- Phase 2 : numéro de commande unique ---
	var orderNumber string
	for attempt := 0; attempt < 3; attempt++ {
		candidate := GenerateOrderNumber(time.Now())
		claimed, err := store.ClaimOrderNumber(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if claimed {
			orderNumber = candidate
			break
		}
		log.Printf("⚠️ Collision numéro de commande %s, nouvelle tentative", candidate)
	}
	if orderNumber == "" {
		return nil, errors.New("could not allocate a unique order number")
	}

	// --- Phase 3 : réservation atomique du stock ---
	var reserved []reservation
	releaseAll := func() {
		for _, r := range reserved {
			if err := store.ReleaseStock(ctx, r.variationID, r.qty); err != nil {
				log.Printf("❌ Échec restitution stock variation %s (+%d): %v", r.variationID, r.qty, err)
			}
		}
	}

	for _, item := range items {
		if item.VariationID == nil {
			continue
		}
		prev, err := store.ReserveStock(ctx, *item.VariationID, item.Quantity)
		if err != nil {
			// Course perdue depuis la phase de validation : on rend tout
			releaseAll()
			return nil, err
		}
		reserved = append(reserved, reservation{
			variationID: *item.VariationID,
			productID:   item.ProductID,
			qty:         item.Quantity,
			prevStock:   prev,
		})
	}

	// --- Phase 4 : écriture commande + lignes, avec compensation ---
	now := time.Now()
	o := &models.Order{
		ID:            gocql.TimeUUID(),
		UserID:        userID,
		OrderNumber:   orderNumber,
		Items:         items,
		ShippingInfo:  shipping,
		TotalAmount:   totalAmount,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := store.InsertOrder(ctx, o); err != nil {
		releaseAll()
		return nil, err
	}

	if err := store.InsertOrderItems(ctx, o.ID, items); err != nil {
		// Compensation : la commande sans lignes ne doit pas rester visible
		if delErr := store.DeleteOrder(ctx, o.ID); delErr != nil {
			log.Printf("❌ Commande orpheline %s: échec suppression compensatoire: %v", o.ID, delErr)
		}
		releaseAll()
		return nil, err
	}

	// Traçabilité inventaire, jamais bloquante
	for _, r := range reserved {
		orderID := o.ID
		variationID := r.variationID
		store.RecordStockMovement(ctx, models.StockMovement{
			ID:          gocql.TimeUUID(),
			ProductID:   r.productID,
			VariationID: &variationID,
			Type:        "sale",
			Quantity:    r.qty,
			PrevStock:   r.prevStock,
			NewStock:    r.prevStock - r.qty,
			Reason:      "order " + orderNumber,
			OrderID:     &orderID,
			UserID:      userID,
			CreatedAt:   now,
		})
	}

	return o, nil
}

// CreateOrder : POST /api/orders
func CreateOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Items []struct {
			ProductID   string `json:"product_id" binding:"required"`
			VariationID string `json:"variation_id"`
			Quantity    int    `json:"quantity" binding:"required"`
		} `json:"items" binding:"required"`
		ShippingInfo models.ShippingInfo `json:"shipping_info" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := validateShipping(req.ShippingInfo); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	requested := make([]ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid product_id: "+item.ProductID)
			return
		}

		ir := ItemRequest{ProductID: productID, Quantity: item.Quantity}
		if item.VariationID != "" {
			variationID, err := gocql.ParseUUID(item.VariationID)
			if err != nil {
				utils.RespondError(c, http.StatusBadRequest, "Invalid variation_id: "+item.VariationID)
				return
			}
			ir.VariationID = &variationID
		}
		requested = append(requested, ir)
	}

	o, err := PlaceOrder(c.Request.Context(), defaultStore, userID, requested, req.ShippingInfo)
	if err != nil {
		status, msg := orderErrorResponse(err)
		utils.RespondError(c, status, msg)
		return
	}

	log.Printf("✅ Commande %s créée pour user %s (%.2f€)", o.OrderNumber, userID, o.TotalAmount)
	utils.RespondSuccess(c, http.StatusCreated, o)
}

func validateShipping(s models.ShippingInfo) error {
	if s.Name == "" || s.Address == "" || s.City == "" || s.PostalCode == "" || s.Country == "" {
		return errors.New("shipping_info requires name, address, city, postal_code and country")
	}
	return nil
}

// orderErrorResponse mappe une erreur métier vers statut HTTP + message public.
func orderErrorResponse(err error) (int, string) {
	var insufficientStock *InsufficientStockError
	var productNotFound *ProductNotFoundError
	var variationNotFound *VariationNotFoundError

	switch {
	case errors.As(err, &insufficientStock),
		errors.As(err, &productNotFound),
		errors.As(err, &variationNotFound),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrNotCancellable):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound, err.Error()
	default:
		log.Printf("❌ Erreur flux commande: %v", err)
		return http.StatusInternalServerError, "Internal server error"
	}
}

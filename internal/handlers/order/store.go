package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// Store isole le flux de commande des sessions Scylla pour le rendre testable
// (voir create_test.go / cancel_test.go). L'implémentation réelle est scyllaStore.
type Store interface {
	GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error)
	GetVariation(ctx context.Context, id gocql.UUID) (*models.ProductVariation, error)

	// ReserveStock décrémente le stock d'une variation de façon atomique
	// (CAS — jamais de stock négatif). Retourne InsufficientStockError si
	// la quantité demandée dépasse le stock courant.
	ReserveStock(ctx context.Context, variationID gocql.UUID, qty int) (prevStock int, err error)
	// ReleaseStock restitue du stock réservé (compensation ou annulation).
	ReleaseStock(ctx context.Context, variationID gocql.UUID, qty int) error

	// ClaimOrderNumber réserve un numéro de commande (LWT IF NOT EXISTS).
	ClaimOrderNumber(ctx context.Context, number string) (bool, error)

	InsertOrder(ctx context.Context, o *models.Order) error
	InsertOrderItems(ctx context.Context, orderID gocql.UUID, items []models.OrderItem) error
	DeleteOrder(ctx context.Context, orderID gocql.UUID) error

	// GetOrderScoped retourne ErrOrderNotFound si la commande n'existe pas OU
	// n'appartient pas à l'appelant (pas de distinction — pas de fuite d'info).
	GetOrderScoped(ctx context.Context, orderID gocql.UUID, userID string, isAdmin bool) (*models.Order, error)
	SetOrderStatus(ctx context.Context, orderID gocql.UUID, status, paymentStatus string) error
	SetOrderPaymentIntent(ctx context.Context, orderID gocql.UUID, intentID string) error

	// RecordStockMovement trace un mouvement de stock (fire-and-forget).
	RecordStockMovement(ctx context.Context, m models.StockMovement)
}

// Nombre de tentatives CAS avant d'abandonner sous forte contention.
const casMaxRetries = 5

type scyllaStore struct{}

// NewStore retourne le Store branché sur les sessions ScyllaDB globales.
func NewStore() Store {
	return scyllaStore{}
}

func (scyllaStore) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	p.ID = id
	err = session.Query(`SELECT name, price, is_active FROM products WHERE product_id = ?`, id).
		WithContext(ctx).Scan(&p.Name, &p.Price, &p.IsActive)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, &ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (scyllaStore) GetVariation(ctx context.Context, id gocql.UUID) (*models.ProductVariation, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var v models.ProductVariation
	v.ID = id
	err = session.Query(`SELECT product_id, sku, price, stock, is_active
		FROM product_variations WHERE variation_id = ?`, id).
		WithContext(ctx).Scan(&v.ProductID, &v.SKU, &v.Price, &v.Stock, &v.IsActive)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, &VariationNotFoundError{VariationID: id}
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s scyllaStore) ReserveStock(ctx context.Context, variationID gocql.UUID, qty int) (int, error) {
	return s.adjustStock(ctx, variationID, -qty)
}

func (s scyllaStore) ReleaseStock(ctx context.Context, variationID gocql.UUID, qty int) error {
	_, err := s.adjustStock(ctx, variationID, qty)
	return err
}

// adjustStock applique delta au stock d'une variation par CAS borné :
// lecture du stock courant puis UPDATE ... IF stock = <lu>. En cas de course
// perdue on relit et on retente — le stock ne peut jamais passer sous zéro.
func (scyllaStore) adjustStock(ctx context.Context, variationID gocql.UUID, delta int) (int, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return 0, err
	}

	var current int
	if err := session.Query(`SELECT stock FROM product_variations WHERE variation_id = ?`, variationID).
		WithContext(ctx).Scan(&current); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return 0, &VariationNotFoundError{VariationID: variationID}
		}
		return 0, err
	}

	for attempt := 0; attempt < casMaxRetries; attempt++ {
		newStock := current + delta
		if newStock < 0 {
			return current, &InsufficientStockError{
				VariationID: variationID,
				Available:   current,
				Requested:   -delta,
			}
		}

		applied, err := session.Query(`UPDATE product_variations SET stock = ?, updated_at = ?
			WHERE variation_id = ? IF stock = ?`, newStock, time.Now(), variationID, current).
			WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return 0, err
		}
		if applied {
			return current, nil
		}
		// CAS perdu : current contient le stock relu, on retente
	}

	return current, fmt.Errorf("stock contention sur variation %s après %d tentatives", variationID, casMaxRetries)
}

func (scyllaStore) ClaimOrderNumber(ctx context.Context, number string) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	var existing string
	applied, err := session.Query(`INSERT INTO order_numbers (order_number) VALUES (?) IF NOT EXISTS`, number).
		WithContext(ctx).ScanCAS(&existing)
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (scyllaStore) InsertOrder(ctx context.Context, o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	shippingJSON, err := json.Marshal(o.ShippingInfo)
	if err != nil {
		return err
	}

	query := `INSERT INTO orders (order_id, user_id, order_number, shipping_info, total_amount,
		status, payment_status, payment_intent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if err := session.Query(query, o.ID, o.UserID, o.OrderNumber, string(shippingJSON), o.TotalAmount,
		o.Status, o.PaymentStatus, o.PaymentIntentID, o.CreatedAt, o.UpdatedAt).
		WithContext(ctx).Exec(); err != nil {
		return err
	}

	// Table dénormalisée pour lister les commandes d'un utilisateur
	if err := session.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, order_number, total_amount, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.UserID, o.CreatedAt, o.ID, o.OrderNumber, o.TotalAmount, o.Status).
		WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation orders_by_user: %v", err)
	}

	return nil
}

func (scyllaStore) InsertOrderItems(ctx context.Context, orderID gocql.UUID, items []models.OrderItem) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	for i, item := range items {
		batch.Query(`INSERT INTO order_items (order_id, item_index, product_id, variation_id, name, sku, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			orderID, i, item.ProductID, item.VariationID, item.Name, item.SKU, item.Quantity, item.UnitPrice)
	}

	return session.ExecuteBatch(batch)
}

func (scyllaStore) DeleteOrder(ctx context.Context, orderID gocql.UUID) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(`DELETE FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).Exec()
}

func (scyllaStore) GetOrderScoped(ctx context.Context, orderID gocql.UUID, userID string, isAdmin bool) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var o models.Order
	var shippingJSON string
	o.ID = orderID

	err = session.Query(`SELECT user_id, order_number, shipping_info, total_amount, status,
		payment_status, payment_intent_id, created_at, updated_at FROM orders WHERE order_id = ?`, orderID).
		WithContext(ctx).Scan(&o.UserID, &o.OrderNumber, &shippingJSON, &o.TotalAmount, &o.Status,
		&o.PaymentStatus, &o.PaymentIntentID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	// Même réponse qu'une commande inexistante pour un non-propriétaire
	if !isAdmin && o.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if shippingJSON != "" {
		if err := json.Unmarshal([]byte(shippingJSON), &o.ShippingInfo); err != nil {
			log.Printf("⚠️ shipping_info illisible pour commande %s: %v", orderID, err)
		}
	}

	iter := session.Query(`SELECT product_id, variation_id, name, sku, quantity, unit_price
		FROM order_items WHERE order_id = ?`, orderID).WithContext(ctx).Iter()

	var item models.OrderItem
	for iter.Scan(&item.ProductID, &item.VariationID, &item.Name, &item.SKU, &item.Quantity, &item.UnitPrice) {
		o.Items = append(o.Items, item)
		item = models.OrderItem{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (scyllaStore) SetOrderStatus(ctx context.Context, orderID gocql.UUID, status, paymentStatus string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(`UPDATE orders SET status = ?, payment_status = ?, updated_at = ? WHERE order_id = ?`,
		status, paymentStatus, time.Now(), orderID).WithContext(ctx).Exec()
}

func (scyllaStore) SetOrderPaymentIntent(ctx context.Context, orderID gocql.UUID, intentID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(`UPDATE orders SET payment_intent_id = ?, updated_at = ? WHERE order_id = ?`,
		intentID, time.Now(), orderID).WithContext(ctx).Exec()
}

func (scyllaStore) RecordStockMovement(ctx context.Context, m models.StockMovement) {
	session, err := database.GetProductsSession()
	if err != nil {
		log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
		return
	}

	if err := session.Query(`INSERT INTO stock_movements (id, product_id, variation_id, type, quantity,
		prev_stock, new_stock, reason, order_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProductID, m.VariationID, m.Type, m.Quantity,
		m.PrevStock, m.NewStock, m.Reason, m.OrderID, m.UserID, m.CreatedAt).
		WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
	}
}

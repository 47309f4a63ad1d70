package order

import (
	"errors"
	"fmt"

	"github.com/gocql/gocql"
)

// Erreurs métier du flux de commande, mappées vers l'enveloppe HTTP par les handlers.
var (
	ErrOrderNotFound    = errors.New("Order not found")
	ErrAlreadyCancelled = errors.New("Order is already cancelled")
	ErrNotCancellable   = errors.New("Order can no longer be cancelled")
	ErrEmptyOrder       = errors.New("Order must contain at least one item")
	ErrInvalidQuantity  = errors.New("Quantity must be a positive integer")
)

type ProductNotFoundError struct {
	ProductID gocql.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product not found: %s", e.ProductID)
}

type VariationNotFoundError struct {
	VariationID gocql.UUID
}

func (e *VariationNotFoundError) Error() string {
	return fmt.Sprintf("Variation not found: %s", e.VariationID)
}

// InsufficientStockError identifie la variation en défaut avec les quantités.
type InsufficientStockError struct {
	VariationID gocql.UUID
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for variation %s: %d available, %d requested",
		e.VariationID, e.Available, e.Requested)
}

package order

import (
	"context"
	"errors"
	"testing"

	"velora_back_end/internal/models"
)

func placeTestOrder(t *testing.T, store *stubStore, userID string) *models.Order {
	t.Helper()
	productID := store.addProduct("T-shirt", 25.0, true)
	variationID := store.addVariation(productID, "TS-L", 29.90, 10, true)

	o, err := PlaceOrder(context.Background(), store, userID, []ItemRequest{
		{ProductID: productID, VariationID: &variationID, Quantity: 4},
	}, testShipping)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	return o
}

func TestCancelPendingRestoresStock(t *testing.T) {
	store := newStubStore()
	o := placeTestOrder(t, store, "user-1")
	variationID := *o.Items[0].VariationID

	if got := store.stock(t, variationID); got != 6 {
		t.Fatalf("stock après commande = %d, attendu 6", got)
	}

	cancelled, err := Cancel(context.Background(), store, o.ID, "user-1", false)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("statut = %s", cancelled.Status)
	}
	if got := store.stock(t, variationID); got != 10 {
		t.Errorf("stock non restitué: %d, attendu 10", got)
	}
	// payment_status inchangé par l'annulation
	if cancelled.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("payment_status modifié: %s", cancelled.PaymentStatus)
	}

	// Mouvement "return" tracé
	last := store.movements[len(store.movements)-1]
	if last.Type != "return" || last.Quantity != 4 {
		t.Errorf("mouvement retour inattendu: %+v", last)
	}
}

func TestCancelProcessingAllowed(t *testing.T) {
	store := newStubStore()
	o := placeTestOrder(t, store, "user-1")
	store.orders[o.ID].Status = models.OrderStatusProcessing

	if _, err := Cancel(context.Background(), store, o.ID, "user-1", false); err != nil {
		t.Errorf("annulation en processing refusée: %v", err)
	}
}

func TestCancelShippedAndDeliveredRejected(t *testing.T) {
	for _, status := range []string{models.OrderStatusShipped, models.OrderStatusDelivered} {
		store := newStubStore()
		o := placeTestOrder(t, store, "user-1")
		store.orders[o.ID].Status = status
		variationID := *o.Items[0].VariationID
		before := store.stock(t, variationID)

		_, err := Cancel(context.Background(), store, o.ID, "user-1", false)
		if !errors.Is(err, ErrNotCancellable) {
			t.Errorf("statut %s: attendu ErrNotCancellable, obtenu %v", status, err)
		}
		// Rien ne bouge : ni statut ni stock
		if store.orders[o.ID].Status != status {
			t.Errorf("statut modifié malgré le refus: %s", store.orders[o.ID].Status)
		}
		if got := store.stock(t, variationID); got != before {
			t.Errorf("stock modifié malgré le refus: %d", got)
		}
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	store := newStubStore()
	o := placeTestOrder(t, store, "user-1")

	if _, err := Cancel(context.Background(), store, o.ID, "user-1", false); err != nil {
		t.Fatalf("première annulation: %v", err)
	}

	variationID := *o.Items[0].VariationID
	before := store.stock(t, variationID)

	_, err := Cancel(context.Background(), store, o.ID, "user-1", false)
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("attendu ErrAlreadyCancelled, obtenu %v", err)
	}
	if err.Error() != "Order is already cancelled" {
		t.Errorf("message = %q", err.Error())
	}
	// Pas de double restitution
	if got := store.stock(t, variationID); got != before {
		t.Errorf("stock restitué deux fois: %d", got)
	}
}

func TestCancelScopedToOwner(t *testing.T) {
	store := newStubStore()
	o := placeTestOrder(t, store, "user-1")

	// Un autre client reçoit un 404, pas un refus explicite
	_, err := Cancel(context.Background(), store, o.ID, "user-2", false)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("attendu ErrOrderNotFound, obtenu %v", err)
	}

	// Un admin peut annuler la commande d'autrui
	if _, err := Cancel(context.Background(), store, o.ID, "admin-1", true); err != nil {
		t.Errorf("annulation admin refusée: %v", err)
	}
}

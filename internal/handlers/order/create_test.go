package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

// stubStore simule le Store en mémoire pour tester le flux de commande sans
// Scylla. Chaque hook fail* force l'échec de l'étape correspondante.
type stubStore struct {
	products   map[gocql.UUID]*models.Product
	variations map[gocql.UUID]*models.ProductVariation

	failInsertOrder      bool
	failInsertOrderItems bool
	failClaimNumber      bool

	claimedNumbers []string
	insertedOrders []*models.Order
	deletedOrders  []gocql.UUID
	movements      []models.StockMovement
	orders         map[gocql.UUID]*models.Order
}

func newStubStore() *stubStore {
	return &stubStore{
		products:   map[gocql.UUID]*models.Product{},
		variations: map[gocql.UUID]*models.ProductVariation{},
		orders:     map[gocql.UUID]*models.Order{},
	}
}

func (s *stubStore) addProduct(name string, price float64, active bool) gocql.UUID {
	id := gocql.TimeUUID()
	s.products[id] = &models.Product{ID: id, Name: name, Price: price, IsActive: active}
	return id
}

func (s *stubStore) addVariation(productID gocql.UUID, sku string, price float64, stock int, active bool) gocql.UUID {
	id := gocql.TimeUUID()
	s.variations[id] = &models.ProductVariation{
		ID: id, ProductID: productID, SKU: sku, Price: price, Stock: stock, IsActive: active,
	}
	return id
}

func (s *stubStore) GetProduct(_ context.Context, id gocql.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, &ProductNotFoundError{ProductID: id}
	}
	cp := *p
	return &cp, nil
}

func (s *stubStore) GetVariation(_ context.Context, id gocql.UUID) (*models.ProductVariation, error) {
	v, ok := s.variations[id]
	if !ok {
		return nil, &VariationNotFoundError{VariationID: id}
	}
	cp := *v
	return &cp, nil
}

func (s *stubStore) ReserveStock(_ context.Context, variationID gocql.UUID, qty int) (int, error) {
	v, ok := s.variations[variationID]
	if !ok {
		return 0, &VariationNotFoundError{VariationID: variationID}
	}
	if v.Stock < qty {
		return v.Stock, &InsufficientStockError{VariationID: variationID, Available: v.Stock, Requested: qty}
	}
	prev := v.Stock
	v.Stock -= qty
	return prev, nil
}

func (s *stubStore) ReleaseStock(_ context.Context, variationID gocql.UUID, qty int) error {
	v, ok := s.variations[variationID]
	if !ok {
		return &VariationNotFoundError{VariationID: variationID}
	}
	v.Stock += qty
	return nil
}

func (s *stubStore) ClaimOrderNumber(_ context.Context, number string) (bool, error) {
	if s.failClaimNumber {
		return false, nil
	}
	for _, n := range s.claimedNumbers {
		if n == number {
			return false, nil
		}
	}
	s.claimedNumbers = append(s.claimedNumbers, number)
	return true, nil
}

func (s *stubStore) InsertOrder(_ context.Context, o *models.Order) error {
	if s.failInsertOrder {
		return errors.New("insert order failed")
	}
	cp := *o
	s.insertedOrders = append(s.insertedOrders, &cp)
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubStore) InsertOrderItems(_ context.Context, orderID gocql.UUID, items []models.OrderItem) error {
	if s.failInsertOrderItems {
		return errors.New("insert order items failed")
	}
	if o, ok := s.orders[orderID]; ok {
		o.Items = items
	}
	return nil
}

func (s *stubStore) DeleteOrder(_ context.Context, orderID gocql.UUID) error {
	s.deletedOrders = append(s.deletedOrders, orderID)
	delete(s.orders, orderID)
	return nil
}

func (s *stubStore) GetOrderScoped(_ context.Context, orderID gocql.UUID, userID string, isAdmin bool) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubStore) SetOrderStatus(_ context.Context, orderID gocql.UUID, status, paymentStatus string) error {
	o, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	o.PaymentStatus = paymentStatus
	return nil
}

func (s *stubStore) SetOrderPaymentIntent(_ context.Context, orderID gocql.UUID, intentID string) error {
	o, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.PaymentIntentID = intentID
	return nil
}

func (s *stubStore) RecordStockMovement(_ context.Context, m models.StockMovement) {
	s.movements = append(s.movements, m)
}

func (s *stubStore) stock(t *testing.T, variationID gocql.UUID) int {
	t.Helper()
	v, ok := s.variations[variationID]
	if !ok {
		t.Fatalf("variation inconnue: %s", variationID)
	}
	return v.Stock
}

var testShipping = models.ShippingInfo{
	Name:       "Jeanne Martin",
	Address:    "12 rue des Lilas",
	City:       "Lyon",
	PostalCode: "69003",
	Country:    "FR",
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)
	variationID := store.addVariation(productID, "TS-L-RED", 29.90, 10, true)

	o, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, VariationID: &variationID, Quantity: 3},
	}, testShipping)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if o.TotalAmount != 3*29.90 {
		t.Errorf("total = %.2f, attendu %.2f", o.TotalAmount, 3*29.90)
	}
	if len(o.Items) != 1 || o.Items[0].UnitPrice != 29.90 {
		t.Errorf("prix unitaire non figé: %+v", o.Items)
	}

	// Un changement de prix catalogue ultérieur ne touche pas la commande
	store.variations[variationID].Price = 99.0
	if o.Items[0].UnitPrice != 29.90 {
		t.Errorf("le prix figé a bougé: %.2f", o.Items[0].UnitPrice)
	}

	if store.stock(t, variationID) != 7 {
		t.Errorf("stock = %d, attendu 7", store.stock(t, variationID))
	}
	if o.Status != models.OrderStatusPending || o.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("statuts initiaux: %s / %s", o.Status, o.PaymentStatus)
	}
	if !strings.HasPrefix(o.OrderNumber, "VL-") {
		t.Errorf("numéro de commande inattendu: %s", o.OrderNumber)
	}
}

func TestPlaceOrderMixedItems(t *testing.T) {
	store := newStubStore()
	simpleID := store.addProduct("Poster", 12.50, true)
	productID := store.addProduct("T-shirt", 25.0, true)
	variationID := store.addVariation(productID, "TS-M", 27.0, 5, true)

	o, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: simpleID, Quantity: 2},
		{ProductID: productID, VariationID: &variationID, Quantity: 1},
	}, testShipping)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	want := 2*12.50 + 27.0
	if o.TotalAmount != want {
		t.Errorf("total = %.2f, attendu %.2f", o.TotalAmount, want)
	}
	// Le produit simple ne touche pas l'inventaire des variations
	if store.stock(t, variationID) != 4 {
		t.Errorf("stock variation = %d, attendu 4", store.stock(t, variationID))
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)
	variationID := store.addVariation(productID, "TS-L", 29.90, 2, true)

	_, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, VariationID: &variationID, Quantity: 5},
	}, testShipping)

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("attendu InsufficientStockError, obtenu %v", err)
	}
	if stockErr.Available != 2 || stockErr.Requested != 5 {
		t.Errorf("détails erreur: %+v", stockErr)
	}

	// Aucune écriture : pas de commande, pas de stock touché
	if len(store.insertedOrders) != 0 {
		t.Errorf("commande insérée malgré le refus")
	}
	if store.stock(t, variationID) != 2 {
		t.Errorf("stock modifié malgré le refus: %d", store.stock(t, variationID))
	}
}

func TestPlaceOrderPartialStockFailureReleasesAll(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)
	okVariation := store.addVariation(productID, "TS-M", 27.0, 10, true)
	shortVariation := store.addVariation(productID, "TS-L", 29.0, 10, true)

	_, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, VariationID: &okVariation, Quantity: 4},
		{ProductID: productID, VariationID: &shortVariation, Quantity: 3},
	}, testShipping)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	// Deuxième commande : la première variation passe, la seconde manque de
	// stock après une vente concurrente simulée
	store.variations[shortVariation].Stock = 1

	_, err = PlaceOrder(context.Background(), store, "user-2", []ItemRequest{
		{ProductID: productID, VariationID: &okVariation, Quantity: 2},
		{ProductID: productID, VariationID: &shortVariation, Quantity: 1},
	}, testShipping)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	// Troisième : okVariation réservée puis échec sur shortVariation → la
	// réservation déjà posée doit être restituée
	store.variations[shortVariation].Stock = 0
	before := store.stock(t, okVariation)

	_, err = PlaceOrder(context.Background(), store, "user-3", []ItemRequest{
		{ProductID: productID, VariationID: &okVariation, Quantity: 2},
		{ProductID: productID, VariationID: &shortVariation, Quantity: 1},
	}, testShipping)

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("attendu InsufficientStockError, obtenu %v", err)
	}
	if got := store.stock(t, okVariation); got != before {
		t.Errorf("réservation non restituée: stock = %d, attendu %d", got, before)
	}
}

func TestPlaceOrderItemInsertFailureCompensates(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)
	variationID := store.addVariation(productID, "TS-L", 29.90, 10, true)
	store.failInsertOrderItems = true

	_, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, VariationID: &variationID, Quantity: 3},
	}, testShipping)
	if err == nil {
		t.Fatal("attendu une erreur d'insertion des lignes")
	}

	// Compensation symétrique : commande supprimée ET stock restitué
	if len(store.insertedOrders) != 1 || len(store.deletedOrders) != 1 {
		t.Errorf("compensation incomplète: inserted=%d deleted=%d",
			len(store.insertedOrders), len(store.deletedOrders))
	}
	if store.deletedOrders[0] != store.insertedOrders[0].ID {
		t.Errorf("mauvaise commande supprimée")
	}
	if store.stock(t, variationID) != 10 {
		t.Errorf("stock non restitué: %d", store.stock(t, variationID))
	}
	if len(store.movements) != 0 {
		t.Errorf("mouvements de stock enregistrés malgré l'échec")
	}
}

func TestPlaceOrderInsertFailureReleasesStock(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)
	variationID := store.addVariation(productID, "TS-L", 29.90, 10, true)
	store.failInsertOrder = true

	_, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, VariationID: &variationID, Quantity: 3},
	}, testShipping)
	if err == nil {
		t.Fatal("attendu une erreur d'insertion")
	}
	if store.stock(t, variationID) != 10 {
		t.Errorf("stock non restitué: %d", store.stock(t, variationID))
	}
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)

	if _, err := PlaceOrder(context.Background(), store, "user-1", nil, testShipping); !errors.Is(err, ErrEmptyOrder) {
		t.Errorf("commande vide: %v", err)
	}

	_, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, Quantity: 0},
	}, testShipping)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("quantité nulle: %v", err)
	}

	_, err = PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, Quantity: -2},
	}, testShipping)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("quantité négative: %v", err)
	}
}

func TestPlaceOrderInactiveProductAndVariation(t *testing.T) {
	store := newStubStore()
	inactiveProduct := store.addProduct("Retiré", 10.0, false)
	productID := store.addProduct("T-shirt", 25.0, true)
	inactiveVariation := store.addVariation(productID, "TS-OLD", 20.0, 5, false)

	_, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: inactiveProduct, Quantity: 1},
	}, testShipping)
	var notFound *ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("produit inactif: %v", err)
	}

	_, err = PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, VariationID: &inactiveVariation, Quantity: 1},
	}, testShipping)
	var varNotFound *VariationNotFoundError
	if !errors.As(err, &varNotFound) {
		t.Errorf("variation inactive: %v", err)
	}
}

func TestPlaceOrderNumberExhaustion(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)
	store.failClaimNumber = true

	_, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, Quantity: 1},
	}, testShipping)
	if err == nil {
		t.Fatal("attendu une erreur d'allocation de numéro")
	}
	if len(store.insertedOrders) != 0 {
		t.Errorf("commande insérée sans numéro")
	}
}

func TestPlaceOrderRecordsSaleMovements(t *testing.T) {
	store := newStubStore()
	productID := store.addProduct("T-shirt", 25.0, true)
	variationID := store.addVariation(productID, "TS-L", 29.90, 10, true)

	o, err := PlaceOrder(context.Background(), store, "user-1", []ItemRequest{
		{ProductID: productID, VariationID: &variationID, Quantity: 3},
	}, testShipping)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(store.movements) != 1 {
		t.Fatalf("mouvements = %d, attendu 1", len(store.movements))
	}
	m := store.movements[0]
	if m.Type != "sale" || m.Quantity != 3 || m.PrevStock != 10 || m.NewStock != 7 {
		t.Errorf("mouvement inattendu: %+v", m)
	}
	if m.OrderID == nil || *m.OrderID != o.ID {
		t.Errorf("mouvement non rattaché à la commande")
	}
}

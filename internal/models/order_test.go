package models

import "testing"

func TestCalcOrderTotal(t *testing.T) {
	items := []OrderItem{
		{UnitPrice: 29.90, Quantity: 3},
		{UnitPrice: 12.50, Quantity: 2},
	}
	want := 29.90*3 + 12.50*2
	if got := CalcOrderTotal(items); got != want {
		t.Errorf("CalcOrderTotal = %.2f, attendu %.2f", got, want)
	}

	if got := CalcOrderTotal(nil); got != 0 {
		t.Errorf("total vide = %.2f", got)
	}
}

func TestIsAdjacentTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},

		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, c := range cases {
		if got := IsAdjacentTransition(c.from, c.to); got != c.want {
			t.Errorf("IsAdjacentTransition(%s, %s) = %v", c.from, c.to, got)
		}
	}
}

func TestIsCancellable(t *testing.T) {
	if !IsCancellable(OrderStatusPending) || !IsCancellable(OrderStatusProcessing) {
		t.Error("pending/processing doivent être annulables")
	}
	for _, s := range []string{OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		if IsCancellable(s) {
			t.Errorf("%s ne doit pas être annulable", s)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		if !IsValidOrderStatus(s) {
			t.Errorf("%s devrait être valide", s)
		}
	}
	if IsValidOrderStatus("refunded") || IsValidOrderStatus("") {
		t.Error("statut inconnu accepté")
	}
}

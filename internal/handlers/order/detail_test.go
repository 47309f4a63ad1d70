package order

import (
	"encoding/json"
	"testing"

	"velora_back_end/internal/models"
)

// La réponse de détail aplatit la commande et joint un bloc client.
func TestOrderDetailJSON(t *testing.T) {
	o := &models.Order{
		OrderNumber: "VL-1756700000-ABCDE",
		UserID:      "user-1",
		TotalAmount: 89.70,
		Status:      models.OrderStatusPending,
		Items: []models.OrderItem{
			{Name: "Chemise en Lin", SKU: "CHE-LIN-M", Quantity: 3, UnitPrice: 29.90},
		},
	}

	detail := orderDetail{
		Order: o,
		Customer: &models.User{
			ID:    "user-1",
			Email: "client@example.com",
			Name:  "Client Test",
			Role:  models.RoleCustomer,
		},
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("sérialisation détail: %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("réponse illisible: %v", err)
	}

	// Champs commande au premier niveau, pas sous une clé intermédiaire
	for _, key := range []string{"order_number", "items", "total_amount", "customer"} {
		if _, ok := out[key]; !ok {
			t.Errorf("clé %q absente de la réponse", key)
		}
	}

	var cust models.User
	if err := json.Unmarshal(out["customer"], &cust); err != nil {
		t.Fatalf("bloc client illisible: %v", err)
	}
	if cust.Email != "client@example.com" || cust.Name != "Client Test" {
		t.Errorf("bloc client dégradé: %+v", cust)
	}
}

func TestOrderDetailOmitsUnknownCustomer(t *testing.T) {
	detail := orderDetail{Order: &models.Order{OrderNumber: "VL-1756700000-ABCDE"}}

	raw, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("sérialisation détail: %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("réponse illisible: %v", err)
	}
	if _, ok := out["customer"]; ok {
		t.Error("bloc client présent alors que le propriétaire est inconnu")
	}
}

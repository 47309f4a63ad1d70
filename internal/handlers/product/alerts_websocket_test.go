package product

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

func TestStockAlertMessage(t *testing.T) {
	alert := models.StockAlert{
		ID:             gocql.TimeUUID(),
		ProductID:      gocql.TimeUUID(),
		ProductName:    "Chemise en Lin",
		CurrentStock:   2,
		ThresholdStock: 10,
		AlertType:      "low_stock",
		CreatedAt:      time.Now(),
	}

	payload, err := stockAlertMessage(alert)
	if err != nil {
		t.Fatalf("sérialisation alerte: %v", err)
	}

	var msg struct {
		Type  string            `json:"type"`
		Alert models.StockAlert `json:"alert"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("payload illisible: %v", err)
	}

	if msg.Type != "stock_alert" {
		t.Errorf("type = %q, attendu stock_alert", msg.Type)
	}
	if msg.Alert.ProductName != "Chemise en Lin" || msg.Alert.AlertType != "low_stock" {
		t.Errorf("alerte dégradée dans le payload: %+v", msg.Alert)
	}
	if msg.Alert.CurrentStock != 2 || msg.Alert.ThresholdStock != 10 {
		t.Errorf("stocks dégradés dans le payload: %+v", msg.Alert)
	}
}

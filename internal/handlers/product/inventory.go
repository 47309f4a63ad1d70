package product

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// UpdateVariationStock : PUT /api/variations/:id/stock (admin/editor)
// Réapprovisionnement ("restock", delta) ou correction ("adjustment", valeur
// absolue). Chaque opération trace un mouvement de stock.
func UpdateVariationStock(c *gin.Context) {
	variationID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid variation id")
		return
	}

	var req struct {
		Quantity int    `json:"quantity" binding:"required"`
		Reason   string `json:"reason" binding:"required"`
		Type     string `json:"type" binding:"required"` // "restock", "adjustment"
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var currentStock int
	var productID gocql.UUID
	if err := session.Query(`SELECT stock, product_id FROM product_variations WHERE variation_id = ?`, variationID).
		Scan(&currentStock, &productID); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Variation not found")
		return
	}

	var newStock int
	switch req.Type {
	case "restock":
		newStock = currentStock + req.Quantity
	case "adjustment":
		newStock = req.Quantity
	default:
		utils.RespondError(c, http.StatusBadRequest, "Invalid operation type")
		return
	}

	if newStock < 0 {
		utils.RespondError(c, http.StatusBadRequest, "Stock cannot be negative")
		return
	}

	// CAS pour ne pas écraser une vente concurrente
	applied, err := session.Query(`UPDATE product_variations SET stock = ?, updated_at = ? WHERE variation_id = ? IF stock = ?`,
		newStock, time.Now(), variationID, currentStock).ScanCAS(&currentStock)
	if err != nil {
		log.Printf("❌ Erreur mise à jour stock: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error updating stock")
		return
	}
	if !applied {
		utils.RespondError(c, http.StatusConflict, "Stock changed concurrently, retry")
		return
	}

	userID := c.GetString("user_id")
	movement := models.StockMovement{
		ID:          gocql.TimeUUID(),
		ProductID:   productID,
		VariationID: &variationID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		PrevStock:   currentStock,
		NewStock:    newStock,
		Reason:      req.Reason,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}

	if err := session.Query(`INSERT INTO stock_movements (id, product_id, variation_id, type, quantity,
		prev_stock, new_stock, reason, order_id, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movement.ID, movement.ProductID, movement.VariationID, movement.Type, movement.Quantity,
		movement.PrevStock, movement.NewStock, movement.Reason, movement.OrderID, movement.UserID, movement.CreatedAt).Exec(); err != nil {
		log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
	}

	checkLowStockAlert(variationID, productID, newStock)

	log.Printf("✅ Stock mis à jour pour variation %s: %d -> %d", variationID, currentStock, newStock)
	utils.RespondMessage(c, http.StatusOK, gin.H{
		"prev_stock":  currentStock,
		"new_stock":   newStock,
		"movement_id": movement.ID,
	}, "Stock updated")
}

// GetStockMovements : GET /api/inventory/movements?product_id=&limit= (admin)
func GetStockMovements(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)
	if limit > 100 {
		limit = 100
	}

	var query string
	var args []interface{}

	if productIDStr := c.Query("product_id"); productIDStr != "" {
		productID, err := gocql.ParseUUID(productIDStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid product id")
			return
		}
		query = `SELECT id, product_id, variation_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at
			FROM stock_movements WHERE product_id = ? LIMIT ?`
		args = []interface{}{productID, limit}
	} else {
		query = `SELECT id, product_id, variation_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at
			FROM stock_movements LIMIT ?`
		args = []interface{}{limit}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(query, args...).WithContext(c.Request.Context()).Iter()

	var movements []models.StockMovement
	var m models.StockMovement

	for iter.Scan(&m.ID, &m.ProductID, &m.VariationID, &m.Type, &m.Quantity, &m.PrevStock,
		&m.NewStock, &m.Reason, &m.OrderID, &m.UserID, &m.CreatedAt) {
		movements = append(movements, m)
		m = models.StockMovement{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération mouvements: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, movements)
}

// GetLowStockAlerts : GET /api/inventory/alerts (admin)
func GetLowStockAlerts(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(`SELECT id, product_id, product_name, current_stock, threshold_stock, alert_type,
		is_resolved, created_at FROM stock_alerts WHERE is_resolved = false ALLOW FILTERING`).
		WithContext(c.Request.Context()).Iter()

	var alerts []models.StockAlert
	var a models.StockAlert

	for iter.Scan(&a.ID, &a.ProductID, &a.ProductName, &a.CurrentStock, &a.ThresholdStock,
		&a.AlertType, &a.IsResolved, &a.CreatedAt) {
		alerts = append(alerts, a)
		a = models.StockAlert{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération alertes: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, alerts)
}

// ResolveStockAlert : PUT /api/inventory/alerts/:id/resolve (admin)
func ResolveStockAlert(c *gin.Context) {
	alertID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid alert id")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := session.Query(`UPDATE stock_alerts SET is_resolved = true, resolved_at = ? WHERE id = ?`,
		time.Now(), alertID).Exec(); err != nil {
		log.Printf("❌ Erreur résolution alerte: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error resolving alert")
		return
	}

	utils.RespondMessage(c, http.StatusOK, nil, "Alert resolved")
}

// checkLowStockAlert crée une alerte si le stock passe sous le seuil du produit
func checkLowStockAlert(variationID, productID gocql.UUID, currentStock int) {
	session, err := database.GetProductsSession()
	if err != nil {
		return
	}

	var threshold int
	var productName string
	if err := session.Query(`SELECT low_stock_threshold, name FROM products WHERE product_id = ?`, productID).
		Scan(&threshold, &productName); err != nil {
		return
	}

	if threshold == 0 {
		threshold = 10 // Seuil par défaut
	}

	var alertType string
	switch {
	case currentStock == 0:
		alertType = "out_of_stock"
	case currentStock <= threshold:
		alertType = "low_stock"
	default:
		return
	}

	// Pas de doublon si une alerte non résolue existe déjà
	var existingID gocql.UUID
	if err := session.Query(`SELECT id FROM stock_alerts WHERE product_id = ? AND is_resolved = false LIMIT 1 ALLOW FILTERING`,
		productID).Scan(&existingID); err == nil {
		return
	}

	alert := models.StockAlert{
		ID:             gocql.TimeUUID(),
		ProductID:      productID,
		ProductName:    productName,
		CurrentStock:   currentStock,
		ThresholdStock: threshold,
		AlertType:      alertType,
		IsResolved:     false,
		CreatedAt:      time.Now(),
	}

	if err := session.Query(`INSERT INTO stock_alerts (id, product_id, product_name, current_stock,
		threshold_stock, alert_type, is_resolved, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.ProductID, alert.ProductName, alert.CurrentStock, alert.ThresholdStock,
		alert.AlertType, alert.IsResolved, alert.CreatedAt).Exec(); err != nil {
		log.Printf("⚠️ Erreur création alerte stock: %v", err)
	} else {
		log.Printf("🚨 Alerte stock créée pour %s (variation %s): %s", productName, variationID, alertType)
		publishStockAlert(alert)
	}
}

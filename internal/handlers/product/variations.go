package product

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// CreateVariation : POST /api/products/:id/variations (admin/editor)
func CreateVariation(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req struct {
		SKU     string            `json:"sku" binding:"required"`
		Price   float64           `json:"price" binding:"required"`
		Stock   int               `json:"stock"`
		Options map[string]string `json:"options" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Stock < 0 {
		utils.RespondError(c, http.StatusBadRequest, "Stock cannot be negative")
		return
	}
	if req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, "Price cannot be negative")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Le produit parent doit exister
	var tempID gocql.UUID
	if err := session.Query(`SELECT product_id FROM products WHERE product_id = ?`, productID).Scan(&tempID); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Product not found")
		return
	}

	// SKU unique
	var existingSKU string
	if err := session.Query(`SELECT sku FROM variations_by_sku WHERE sku = ?`, req.SKU).Scan(&existingSKU); err == nil {
		utils.RespondError(c, http.StatusConflict, "SKU already exists")
		return
	}

	v := models.ProductVariation{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		SKU:       req.SKU,
		Price:     req.Price,
		Stock:     req.Stock,
		Options:   req.Options,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := session.Query(`INSERT INTO product_variations (variation_id, product_id, sku, price, stock,
		options, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ProductID, v.SKU, v.Price, v.Stock, v.Options, v.IsActive, v.CreatedAt, v.UpdatedAt).Exec(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error creating variation")
		return
	}

	if err := session.Query(`INSERT INTO variations_by_sku (sku, variation_id) VALUES (?, ?)`, v.SKU, v.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation variations_by_sku: %v", err)
	}
	if err := session.Query(`INSERT INTO variations_by_product (product_id, variation_id, sku, price, stock, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`, v.ProductID, v.ID, v.SKU, v.Price, v.Stock, v.IsActive).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation variations_by_product: %v", err)
	}

	// Le produit porte maintenant des variations
	if err := session.Query(`UPDATE products SET has_variations = true, updated_at = ? WHERE product_id = ?`,
		time.Now(), productID).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour has_variations: %v", err)
	}

	utils.LogAction(c, "variation_create", "variation", v.ID.String(), nil, v)
	utils.RespondSuccess(c, http.StatusCreated, v)
}

// GetVariations : GET /api/products/:id/variations
func GetVariations(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(`SELECT variation_id, sku, price, stock, is_active FROM variations_by_product
		WHERE product_id = ?`, productID).WithContext(c.Request.Context()).Iter()

	var variations []models.ProductVariation
	var v models.ProductVariation

	for iter.Scan(&v.ID, &v.SKU, &v.Price, &v.Stock, &v.IsActive) {
		v.ProductID = productID
		variations = append(variations, v)
		v = models.ProductVariation{}
	}

	if err := iter.Close(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error reading variations")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, variations)
}

// UpdateVariation : PUT /api/variations/:id (admin/editor)
// Le stock ne se modifie PAS ici : passer par l'endpoint inventaire qui trace
// les mouvements (voir inventory.go).
func UpdateVariation(c *gin.Context) {
	variationID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid variation id")
		return
	}

	var req struct {
		Price    *float64           `json:"price"`
		Options  *map[string]string `json:"options"`
		IsActive *bool              `json:"is_active"`
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

	var v models.ProductVariation
	v.ID = variationID
	if err := session.Query(`SELECT product_id, sku, price, stock, options, is_active
		FROM product_variations WHERE variation_id = ?`, variationID).
		Scan(&v.ProductID, &v.SKU, &v.Price, &v.Stock, &v.Options, &v.IsActive); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Variation not found")
		return
	}

	old := v

	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		v.Price = *req.Price
	}
	if req.Options != nil {
		v.Options = *req.Options
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	v.UpdatedAt = time.Now()

	if err := session.Query(`UPDATE product_variations SET price = ?, options = ?, is_active = ?, updated_at = ?
		WHERE variation_id = ?`, v.Price, v.Options, v.IsActive, v.UpdatedAt, variationID).Exec(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error updating variation")
		return
	}

	utils.LogAction(c, "variation_update", "variation", variationID.String(), old, v)
	utils.RespondSuccess(c, http.StatusOK, v)
}

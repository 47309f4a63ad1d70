package product

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/gosimple/slug"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
	"velora_back_end/internal/utils"
)

// UniqueSlug dérive un slug URL-safe du nom et le suffixe (-2, -3...) tant
// que le prédicat exists le signale comme déjà pris.
func UniqueSlug(name string, exists func(string) bool) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; exists(candidate); i++ {
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return candidate
}

func slugExists(session *gocql.Session, s string) bool {
	var productID gocql.UUID
	err := session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`, s).Scan(&productID)
	return err == nil
}

// CreateProduct : POST /api/products (admin/editor)
func CreateProduct(c *gin.Context) {
	var p models.Product

	if err := c.ShouldBindJSON(&p); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if p.Name == "" {
		utils.RespondError(c, http.StatusBadRequest, "Field 'name' is required")
		return
	}
	if p.CategoryID == (gocql.UUID{}) {
		utils.RespondError(c, http.StatusBadRequest, "Field 'category_id' is required")
		return
	}
	if p.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, "Price cannot be negative")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Vérifie que la catégorie existe
	var categoryName string
	if err := session.Query(`SELECT name FROM categories WHERE category_id = ?`, p.CategoryID).Scan(&categoryName); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Category not found")
		return
	}

	p.ID = gocql.TimeUUID()
	p.Slug = UniqueSlug(p.Name, func(s string) bool { return slugExists(session, s) })
	p.IsActive = true
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO products (product_id, name, slug, description, price, stock, low_stock_threshold,
		sku, category_id, image_urls, tags, is_active, has_variations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if err := session.Query(query, p.ID, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.LowStockThreshold,
		p.SKU, p.CategoryID, p.ImageURLs, p.Tags, p.IsActive, p.HasVariations, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error creating product")
		return
	}

	// Tables dénormalisées (slug et catégorie)
	if err := session.Query(`INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?)`, p.Slug, p.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation products_by_slug: %v", err)
	}
	if err := session.Query(`INSERT INTO products_by_category (category_id, product_id, name, slug, price, stock)
		VALUES (?, ?, ?, ?, ?, ?)`, p.CategoryID, p.ID, p.Name, p.Slug, p.Price, p.Stock).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation products_by_category: %v", err)
	}

	// Indexation Elasticsearch, jamais bloquante
	go services.IndexProduct(p)

	cache.InvalidateProductCache(c.Request.Context(), p.ID.String())
	utils.LogAction(c, "product_create", "product", p.ID.String(), nil, p)

	utils.RespondSuccess(c, http.StatusCreated, p)
}

// GetAllProducts : GET /api/products — liste paginée, cache Redis sur la
// première page sans filtre
func GetAllProducts(c *gin.Context) {
	ctx := c.Request.Context()
	page, limit := utils.ParsePagination(c)
	cacheKey := "products:all"

	if page == 1 && limit == 20 {
		var cached []models.Product
		if cache.GetJSON(ctx, cacheKey, &cached) {
			utils.RespondPaginated(c, http.StatusOK, cached, utils.NewPagination(page, limit, len(cached)))
			return
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(`SELECT product_id, name, slug, description, price, stock, low_stock_threshold,
		sku, category_id, image_urls, tags, is_active, has_variations, created_at, updated_at FROM products`).
		WithContext(ctx).Iter()

	var products []models.Product
	var p models.Product

	for iter.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.LowStockThreshold,
		&p.SKU, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive, &p.HasVariations, &p.CreatedAt, &p.UpdatedAt) {
		if p.IsActive {
			products = append(products, p)
		}
		p = models.Product{}
	}

	if err := iter.Close(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error reading products")
		return
	}

	total := len(products)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageItems := products[start:end]

	if page == 1 && limit == 20 {
		cache.SetJSON(ctx, cacheKey, pageItems, cache.ProductCacheTTL)
	}

	utils.RespondPaginated(c, http.StatusOK, pageItems, utils.NewPagination(page, limit, total))
}

// GetProductBySlug : GET /api/products/slug/:slug (vitrine)
func GetProductBySlug(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var productID gocql.UUID
	if err := session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`, c.Param("slug")).
		Scan(&productID); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Product not found")
		return
	}

	fetchProduct(c, session, productID)
}

// GetProductByID : GET /api/products/:id
func GetProductByID(c *gin.Context) {
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

	fetchProduct(c, session, productID)
}

func fetchProduct(c *gin.Context, session *gocql.Session, productID gocql.UUID) {
	var p models.Product
	p.ID = productID

	err := session.Query(`SELECT name, slug, description, price, stock, low_stock_threshold, sku,
		category_id, image_urls, tags, is_active, has_variations, created_at, updated_at
		FROM products WHERE product_id = ?`, productID).
		Scan(&p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.LowStockThreshold, &p.SKU,
			&p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive, &p.HasVariations, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "Product not found")
		return
	}

	// URLs signées MinIO pour les images
	signed := make([]string, 0, len(p.ImageURLs))
	for _, u := range p.ImageURLs {
		if signedURL, err := services.GenerateSignedURL(c.Request.Context(), u, 24*time.Hour); err == nil {
			signed = append(signed, signedURL)
		}
	}
	if len(signed) > 0 {
		p.ImageURLs = signed
	}

	utils.RespondSuccess(c, http.StatusOK, p)
}

// UpdateProduct : PUT /api/products/:id (admin/editor)
func UpdateProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		CategoryID  *string   `json:"category_id"`
		Tags        *[]string `json:"tags"`
		IsActive    *bool     `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var p models.Product
	p.ID = productID
	if err := session.Query(`SELECT name, slug, description, price, stock, category_id, tags, is_active
		FROM products WHERE product_id = ?`, productID).
		Scan(&p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.Tags, &p.IsActive); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Product not found")
		return
	}

	old := p

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		p.Price = *req.Price
	}
	if req.CategoryID != nil {
		catUUID, err := gocql.ParseUUID(*req.CategoryID)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid category_id")
			return
		}
		p.CategoryID = catUUID
	}
	if req.Tags != nil {
		p.Tags = *req.Tags
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := session.Query(`UPDATE products SET name = ?, description = ?, price = ?, category_id = ?,
		tags = ?, is_active = ?, updated_at = ? WHERE product_id = ?`,
		p.Name, p.Description, p.Price, p.CategoryID, p.Tags, p.IsActive, p.UpdatedAt, productID).Exec(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error updating product")
		return
	}

	go services.IndexProduct(p)
	cache.InvalidateProductCache(c.Request.Context(), productID.String())
	utils.LogAction(c, "product_update", "product", productID.String(), old, p)

	utils.RespondSuccess(c, http.StatusOK, p)
}

// DeleteProduct : DELETE /api/products/:id (admin) — désactivation logique,
// le catalogue ne supprime jamais physiquement un produit référencé par des
// commandes.
func DeleteProduct(c *gin.Context) {
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

	if err := session.Query(`UPDATE products SET is_active = false, updated_at = ? WHERE product_id = ?`,
		time.Now(), productID).Exec(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error deleting product")
		return
	}

	go services.RemoveProductFromIndex(productID.String())
	cache.InvalidateProductCache(c.Request.Context(), productID.String())
	utils.LogAction(c, "product_delete", "product", productID.String(), nil, nil)

	utils.RespondMessage(c, http.StatusOK, nil, "Product deleted")
}

// GetProductsByCategory : GET /api/categories/:slug/products
// Accepte un UUID ou un slug de catégorie.
func GetProductsByCategory(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	param := c.Param("slug")
	catUUID, err := gocql.ParseUUID(param)
	if err != nil {
		if err := session.Query(`SELECT category_id FROM categories_by_slug WHERE slug = ?`, param).
			Scan(&catUUID); err != nil {
			utils.RespondError(c, http.StatusNotFound, "Category not found")
			return
		}
	}

	iter := session.Query(`SELECT product_id, name, slug, price, stock FROM products_by_category
		WHERE category_id = ?`, catUUID).WithContext(c.Request.Context()).Iter()

	var products []models.Product
	var p models.Product

	for iter.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Stock) {
		p.CategoryID = catUUID
		products = append(products, p)
		p = models.Product{}
	}

	if err := iter.Close(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error reading products")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, products)
}

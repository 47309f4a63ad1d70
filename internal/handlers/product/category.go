package product

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// CreateCategory : POST /api/categories (admin/editor)
func CreateCategory(c *gin.Context) {
	var req struct {
		Name             string `json:"name" binding:"required"`
		Description      string `json:"description"`
		ImageURL         string `json:"image_url"`
		ParentCategoryID string `json:"parent_category_id"`
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

	cat := models.Category{
		ID:          gocql.TimeUUID(),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	cat.Slug = UniqueSlug(req.Name, func(s string) bool {
		return categorySlugExists(session, s)
	})

	if req.ParentCategoryID != "" {
		parentID, err := gocql.ParseUUID(req.ParentCategoryID)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid parent_category_id")
			return
		}
		// Le parent doit exister
		var tempID gocql.UUID
		if err := session.Query(`SELECT category_id FROM categories WHERE category_id = ?`, parentID).Scan(&tempID); err != nil {
			utils.RespondError(c, http.StatusNotFound, "Parent category not found")
			return
		}
		cat.ParentCategoryID = &parentID
	}

	now := time.Now()
	cat.CreatedAt = &now

	if err := session.Query(`INSERT INTO categories (category_id, name, slug, description, image_url, parent_category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.ImageURL, cat.ParentCategoryID, now).Exec(); err != nil {
		log.Printf("❌ Erreur création catégorie: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error creating category")
		return
	}

	if err := session.Query(`INSERT INTO categories_by_slug (slug, category_id) VALUES (?, ?)`,
		cat.Slug, cat.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation categories_by_slug: %v", err)
	}

	cache.InvalidateCategoryCache(c.Request.Context())
	utils.LogAction(c, "category_create", "category", cat.ID.String(), nil, cat)

	log.Printf("✅ Catégorie créée: %s (%s)", cat.Name, cat.Slug)
	utils.RespondSuccess(c, http.StatusCreated, cat)
}

// GetAllCategories : GET /api/categories — cache Redis 1h
func GetAllCategories(c *gin.Context) {
	ctx := c.Request.Context()
	cacheKey := "categories:all"

	var cached []models.Category
	if cache.GetJSON(ctx, cacheKey, &cached) {
		utils.RespondSuccess(c, http.StatusOK, cached)
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(`SELECT category_id, name, slug, description, image_url, parent_category_id, created_at
		FROM categories`).WithContext(ctx).Iter()

	var cats []models.Category
	var cat models.Category
	var createdAt time.Time

	for iter.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL, &cat.ParentCategoryID, &createdAt) {
		t := createdAt
		cat.CreatedAt = &t
		cats = append(cats, cat)
		cat = models.Category{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture catégories: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	cache.SetJSON(ctx, cacheKey, cats, cache.CategoryCacheTTL)
	utils.RespondSuccess(c, http.StatusOK, cats)
}

// GetCategoryBySlug : GET /api/categories/:slug
func GetCategoryBySlug(c *gin.Context) {
	slugParam := c.Param("slug")

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var categoryID gocql.UUID
	if err := session.Query(`SELECT category_id FROM categories_by_slug WHERE slug = ?`, slugParam).Scan(&categoryID); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Category not found")
		return
	}

	var cat models.Category
	var createdAt time.Time
	if err := session.Query(`SELECT category_id, name, slug, description, image_url, parent_category_id, created_at
		FROM categories WHERE category_id = ?`, categoryID).
		Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL, &cat.ParentCategoryID, &createdAt); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Category not found")
		return
	}
	cat.CreatedAt = &createdAt

	utils.RespondSuccess(c, http.StatusOK, cat)
}

// UpdateCategory : PUT /api/categories/:id (admin/editor)
func UpdateCategory(c *gin.Context) {
	categoryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
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

	var cat models.Category
	if err := session.Query(`SELECT category_id, name, slug, description, image_url, parent_category_id
		FROM categories WHERE category_id = ?`, categoryID).
		Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL, &cat.ParentCategoryID); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Category not found")
		return
	}

	old := cat

	// Le slug reste stable après création (les URLs publiques y pointent)
	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	if req.ImageURL != nil {
		cat.ImageURL = *req.ImageURL
	}

	if err := session.Query(`UPDATE categories SET name = ?, description = ?, image_url = ? WHERE category_id = ?`,
		cat.Name, cat.Description, cat.ImageURL, categoryID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour catégorie: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error updating category")
		return
	}

	cache.InvalidateCategoryCache(c.Request.Context())
	utils.LogAction(c, "category_update", "category", categoryID.String(), old, cat)

	utils.RespondSuccess(c, http.StatusOK, cat)
}

// DeleteCategory : DELETE /api/categories/:id (admin)
// Refusée si des produits référencent encore la catégorie.
func DeleteCategory(c *gin.Context) {
	categoryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var cat models.Category
	if err := session.Query(`SELECT category_id, name, slug FROM categories WHERE category_id = ?`, categoryID).
		Scan(&cat.ID, &cat.Name, &cat.Slug); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Category not found")
		return
	}

	var productID gocql.UUID
	if err := session.Query(`SELECT product_id FROM products_by_category WHERE category_id = ? LIMIT 1`,
		categoryID).Scan(&productID); err == nil {
		utils.RespondError(c, http.StatusConflict, "Category still has products")
		return
	}

	if err := session.Query(`DELETE FROM categories WHERE category_id = ?`, categoryID).Exec(); err != nil {
		log.Printf("❌ Erreur suppression catégorie: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error deleting category")
		return
	}
	if err := session.Query(`DELETE FROM categories_by_slug WHERE slug = ?`, cat.Slug).Exec(); err != nil {
		log.Printf("⚠️ Erreur nettoyage categories_by_slug: %v", err)
	}

	cache.InvalidateCategoryCache(c.Request.Context())
	utils.LogAction(c, "category_delete", "category", categoryID.String(), cat, nil)

	utils.RespondMessage(c, http.StatusOK, nil, "Category deleted")
}

func categorySlugExists(session *gocql.Session, s string) bool {
	var id gocql.UUID
	return session.Query(`SELECT category_id FROM categories_by_slug WHERE slug = ?`, s).Scan(&id) == nil
}

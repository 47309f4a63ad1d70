package product

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
	"velora_back_end/internal/utils"
)

// SearchProducts : GET /api/products/search?q= — Elasticsearch en priorité,
// fallback scan Scylla filtré en mémoire si l'index est vide ou indisponible
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.RespondError(c, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	results, err := services.SearchProducts(query)
	if err == nil && len(results) > 0 {
		// URLs signées MinIO pour chaque résultat
		for i := range results {
			if urls, ok := results[i]["image_urls"].([]interface{}); ok {
				signed := []string{}
				for _, u := range urls {
					if str, ok := u.(string); ok && str != "" {
						if signedURL, err := services.GenerateSignedURL(c.Request.Context(), str, 24*time.Hour); err == nil {
							signed = append(signed, signedURL)
						}
					}
				}
				results[i]["image_urls"] = signed
			}
		}
		utils.RespondSuccess(c, http.StatusOK, results)
		return
	}

	// Fallback Scylla : scan complet filtré en mémoire (non optimal, mais le
	// chemin nominal reste Elasticsearch)
	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(`SELECT product_id, name, slug, description, price, stock, category_id, image_urls, tags, is_active
		FROM products`).WithContext(c.Request.Context()).Iter()

	var products []models.Product
	var p models.Product

	for iter.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive) {
		if p.IsActive && (containsIgnoreCase(p.Name, query) || containsIgnoreCase(p.Description, query) || containsTagsIgnoreCase(p.Tags, query)) {
			products = append(products, p)
		}
		p = models.Product{}
	}

	if err := iter.Close(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Search error")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, products)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func containsTagsIgnoreCase(tags []string, query string) bool {
	for _, tag := range tags {
		if containsIgnoreCase(tag, query) {
			return true
		}
	}
	return false
}

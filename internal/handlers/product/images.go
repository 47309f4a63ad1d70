package product

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/services"
	"velora_back_end/internal/utils"
)

// UploadProductImage : POST /api/products/:id/images (admin/editor)
// Upload multipart vers MinIO puis ajout du chemin objet au produit.
func UploadProductImage(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Missing file")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var existingURLs []string
	if err := session.Query(`SELECT image_urls FROM products WHERE product_id = ?`, productID).
		Scan(&existingURLs); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Product not found")
		return
	}

	objectPath, err := services.UploadImage(c.Request.Context(), "products", header)
	if err != nil {
		log.Printf("❌ Erreur upload MinIO: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error uploading image")
		return
	}

	existingURLs = append(existingURLs, objectPath)
	if err := session.Query(`UPDATE products SET image_urls = ?, updated_at = ? WHERE product_id = ?`,
		existingURLs, time.Now(), productID).Exec(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error updating product")
		return
	}

	cache.InvalidateProductCache(c.Request.Context(), productID.String())

	signed, _ := services.GenerateSignedURL(c.Request.Context(), objectPath, 24*time.Hour)
	utils.RespondMessage(c, http.StatusCreated, gin.H{
		"image_url":  objectPath,
		"signed_url": signed,
	}, "Image uploaded")
}

// DeleteProductImage : DELETE /api/products/:id/images (admin/editor)
// Retire l'image du produit puis supprime l'objet MinIO.
func DeleteProductImage(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
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

	var currentURLs []string
	if err := session.Query(`SELECT image_urls FROM products WHERE product_id = ?`, productID).
		Scan(&currentURLs); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Product not found")
		return
	}

	filtered := []string{}
	found := false
	for _, u := range currentURLs {
		if u == req.ImageURL {
			found = true
			continue
		}
		filtered = append(filtered, u)
	}
	if !found {
		utils.RespondError(c, http.StatusNotFound, "Image not found on product")
		return
	}

	if err := session.Query(`UPDATE products SET image_urls = ?, updated_at = ? WHERE product_id = ?`,
		filtered, time.Now(), productID).Exec(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Error updating product")
		return
	}

	if err := database.MinIO.RemoveObject(c.Request.Context(), os.Getenv("MINIO_BUCKET"),
		req.ImageURL, minio.RemoveObjectOptions{}); err != nil {
		// Le produit ne référence plus l'image, l'objet orphelin se nettoie plus tard
		log.Printf("⚠️ Erreur suppression MinIO %s: %v", req.ImageURL, err)
	}

	cache.InvalidateProductCache(c.Request.Context(), productID.String())
	utils.RespondMessage(c, http.StatusOK, nil, "Image deleted")
}

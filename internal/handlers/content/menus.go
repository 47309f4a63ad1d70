package content

import (
	"encoding/json"
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

var menuLocations = map[string]bool{
	"header": true,
	"footer": true,
}

// CreateMenu : POST /api/menus (admin/editor)
// Un seul menu par emplacement, la création écrase l'existant.
func CreateMenu(c *gin.Context) {
	var req struct {
		Name     string            `json:"name" binding:"required"`
		Location string            `json:"location" binding:"required"`
		Items    []models.MenuItem `json:"items"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !menuLocations[req.Location] {
		utils.RespondError(c, http.StatusBadRequest, "Invalid location: "+req.Location)
		return
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := time.Now()
	menu := models.Menu{
		ID:        gocql.TimeUUID(),
		Name:      req.Name,
		Location:  req.Location,
		Items:     req.Items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	itemsJSON, err := json.Marshal(menu.Items)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid items")
		return
	}

	// La table est partitionnée par location : un INSERT remplace le menu en place
	if err := session.Query(`INSERT INTO menus (location, menu_id, name, items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		menu.Location, menu.ID, menu.Name, string(itemsJSON), menu.CreatedAt, menu.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création menu: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error creating menu")
		return
	}

	cache.InvalidateContentCache(c.Request.Context(), "menu:"+menu.Location)
	utils.LogAction(c, "menu_create", "menu", menu.ID.String(), nil, menu)

	log.Printf("✅ Menu créé: %s (%s)", menu.Name, menu.Location)
	utils.RespondSuccess(c, http.StatusCreated, menu)
}

// GetMenuByLocation : GET /api/menus/:location — public, cache Redis 5 min
func GetMenuByLocation(c *gin.Context) {
	location := c.Param("location")
	if !menuLocations[location] {
		utils.RespondError(c, http.StatusBadRequest, "Invalid location: "+location)
		return
	}

	ctx := c.Request.Context()
	cacheKey := "menu:" + location

	var cached models.Menu
	if cache.GetJSON(ctx, cacheKey, &cached) {
		utils.RespondSuccess(c, http.StatusOK, cached)
		return
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var menu models.Menu
	var itemsJSON string
	if err := session.Query(`SELECT location, menu_id, name, items, created_at, updated_at
		FROM menus WHERE location = ?`, location).
		Scan(&menu.Location, &menu.ID, &menu.Name, &itemsJSON, &menu.CreatedAt, &menu.UpdatedAt); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Menu not found")
		return
	}

	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &menu.Items); err != nil {
			log.Printf("⚠️ Items corrompus pour menu %s: %v", location, err)
		}
	}

	cache.SetJSON(ctx, cacheKey, menu, cache.ContentCacheTTL)
	utils.RespondSuccess(c, http.StatusOK, menu)
}

// UpdateMenu : PUT /api/menus/:location (admin/editor)
func UpdateMenu(c *gin.Context) {
	location := c.Param("location")
	if !menuLocations[location] {
		utils.RespondError(c, http.StatusBadRequest, "Invalid location: "+location)
		return
	}

	var req struct {
		Name  *string            `json:"name"`
		Items *[]models.MenuItem `json:"items"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var menu models.Menu
	var itemsJSON string
	if err := session.Query(`SELECT location, menu_id, name, items, created_at, updated_at
		FROM menus WHERE location = ?`, location).
		Scan(&menu.Location, &menu.ID, &menu.Name, &itemsJSON, &menu.CreatedAt, &menu.UpdatedAt); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Menu not found")
		return
	}
	if itemsJSON != "" {
		json.Unmarshal([]byte(itemsJSON), &menu.Items)
	}

	old := menu

	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Items != nil {
		menu.Items = *req.Items
	}
	menu.UpdatedAt = time.Now()

	newItemsJSON, err := json.Marshal(menu.Items)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid items")
		return
	}

	if err := session.Query(`UPDATE menus SET name = ?, items = ?, updated_at = ? WHERE location = ?`,
		menu.Name, string(newItemsJSON), menu.UpdatedAt, location).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour menu: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error updating menu")
		return
	}

	cache.InvalidateContentCache(c.Request.Context(), "menu:"+location)
	utils.LogAction(c, "menu_update", "menu", menu.ID.String(), old, menu)
	utils.RespondSuccess(c, http.StatusOK, menu)
}

// DeleteMenu : DELETE /api/menus/:location (admin)
func DeleteMenu(c *gin.Context) {
	location := c.Param("location")
	if !menuLocations[location] {
		utils.RespondError(c, http.StatusBadRequest, "Invalid location: "+location)
		return
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var menuID gocql.UUID
	if err := session.Query(`SELECT menu_id FROM menus WHERE location = ?`, location).Scan(&menuID); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Menu not found")
		return
	}

	if err := session.Query(`DELETE FROM menus WHERE location = ?`, location).Exec(); err != nil {
		log.Printf("❌ Erreur suppression menu: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error deleting menu")
		return
	}

	cache.InvalidateContentCache(c.Request.Context(), "menu:"+location)
	utils.LogAction(c, "menu_delete", "menu", menuID.String(), gin.H{"location": location}, nil)
	utils.RespondMessage(c, http.StatusOK, nil, "Menu deleted")
}

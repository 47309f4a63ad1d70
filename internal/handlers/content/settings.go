package content

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// GetAllSettings : GET /api/settings — public, cache Redis 5 min
func GetAllSettings(c *gin.Context) {
	ctx := c.Request.Context()
	cacheKey := "settings:all"

	var cached []models.Setting
	if cache.GetJSON(ctx, cacheKey, &cached) {
		utils.RespondSuccess(c, http.StatusOK, cached)
		return
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(`SELECT key, type, value, updated_at FROM settings`).
		WithContext(ctx).Iter()

	var settings []models.Setting
	var s models.Setting
	for iter.Scan(&s.Key, &s.Type, &s.Value, &s.UpdatedAt) {
		settings = append(settings, s)
		s = models.Setting{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture settings: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	cache.SetJSON(ctx, cacheKey, settings, cache.ContentCacheTTL)
	utils.RespondSuccess(c, http.StatusOK, settings)
}

// GetSetting : GET /api/settings/:key — public
func GetSetting(c *gin.Context) {
	key := c.Param("key")

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var s models.Setting
	if err := session.Query(`SELECT key, type, value, updated_at FROM settings WHERE key = ?`, key).
		Scan(&s.Key, &s.Type, &s.Value, &s.UpdatedAt); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Setting not found")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, s)
}

// UpsertSetting : PUT /api/settings/:key (admin)
// La valeur est validée contre le type déclaré avant écriture.
func UpsertSetting(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		Type  string `json:"type" binding:"required"`
		Value string `json:"value" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := models.ValidateSettingValue(req.Type, req.Value); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid setting value: "+err.Error())
		return
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var old models.Setting
	hadOld := session.Query(`SELECT key, type, value FROM settings WHERE key = ?`, key).
		Scan(&old.Key, &old.Type, &old.Value) == nil

	s := models.Setting{
		Key:       key,
		Type:      req.Type,
		Value:     req.Value,
		UpdatedAt: time.Now(),
	}

	if err := session.Query(`INSERT INTO settings (key, type, value, updated_at) VALUES (?, ?, ?, ?)`,
		s.Key, s.Type, s.Value, s.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur écriture setting %s: %v", key, err)
		utils.RespondError(c, http.StatusInternalServerError, "Error saving setting")
		return
	}

	cache.InvalidateContentCache(c.Request.Context(), "settings:all")

	if hadOld {
		utils.LogAction(c, "setting_update", "setting", key, old, s)
	} else {
		utils.LogAction(c, "setting_create", "setting", key, nil, s)
	}

	utils.RespondSuccess(c, http.StatusOK, s)
}

// DeleteSetting : DELETE /api/settings/:key (admin)
func DeleteSetting(c *gin.Context) {
	key := c.Param("key")

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var old models.Setting
	if err := session.Query(`SELECT key, type, value FROM settings WHERE key = ?`, key).
		Scan(&old.Key, &old.Type, &old.Value); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Setting not found")
		return
	}

	if err := session.Query(`DELETE FROM settings WHERE key = ?`, key).Exec(); err != nil {
		log.Printf("❌ Erreur suppression setting %s: %v", key, err)
		utils.RespondError(c, http.StatusInternalServerError, "Error deleting setting")
		return
	}

	cache.InvalidateContentCache(c.Request.Context(), "settings:all")
	utils.LogAction(c, "setting_delete", "setting", key, old, nil)
	utils.RespondMessage(c, http.StatusOK, nil, "Setting deleted")
}

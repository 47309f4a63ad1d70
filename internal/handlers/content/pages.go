package content

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/gosimple/slug"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// Les sections sont stockées en JSON texte dans Scylla, le typage est
// validé à l'écriture (voir models.IsValidSectionType).

// CreatePage : POST /api/pages (admin/editor)
func CreatePage(c *gin.Context) {
	var req struct {
		Title          string               `json:"title" binding:"required"`
		Sections       []models.PageSection `json:"sections"`
		SEOTitle       string               `json:"seo_title"`
		SEODescription string               `json:"seo_description"`
		IsPublished    bool                 `json:"is_published"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	for _, s := range req.Sections {
		if !models.IsValidSectionType(s.Type) {
			utils.RespondError(c, http.StatusBadRequest, "Invalid section type: "+s.Type)
			return
		}
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	pageSlug := uniquePageSlug(session, req.Title)
	now := time.Now()

	page := models.Page{
		ID:             gocql.TimeUUID(),
		Title:          req.Title,
		Slug:           pageSlug,
		Sections:       req.Sections,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		IsPublished:    req.IsPublished,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	sectionsJSON, err := json.Marshal(page.Sections)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid sections")
		return
	}

	if err := session.Query(`INSERT INTO pages (page_id, title, slug, sections, seo_title, seo_description,
		is_published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.ID, page.Title, page.Slug, string(sectionsJSON), page.SEOTitle, page.SEODescription,
		page.IsPublished, page.CreatedAt, page.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création page: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error creating page")
		return
	}

	if err := session.Query(`INSERT INTO pages_by_slug (slug, page_id) VALUES (?, ?)`,
		page.Slug, page.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation pages_by_slug: %v", err)
	}

	utils.LogAction(c, "page_create", "page", page.ID.String(), nil, page)
	log.Printf("✅ Page créée: %s (%s)", page.Title, page.Slug)
	utils.RespondSuccess(c, http.StatusCreated, page)
}

// GetPageBySlug : GET /api/pages/:slug — public, pages publiées uniquement,
// cache Redis 5 min. Un admin/editor authentifié voit aussi les brouillons.
func GetPageBySlug(c *gin.Context) {
	slugParam := c.Param("slug")
	role := c.GetString("role")
	canSeeDrafts := role == models.RoleAdmin || role == models.RoleEditor

	ctx := c.Request.Context()
	cacheKey := "page:" + slugParam

	if !canSeeDrafts {
		var cached models.Page
		if cache.GetJSON(ctx, cacheKey, &cached) {
			utils.RespondSuccess(c, http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var pageID gocql.UUID
	if err := session.Query(`SELECT page_id FROM pages_by_slug WHERE slug = ?`, slugParam).Scan(&pageID); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Page not found")
		return
	}

	page, err := fetchPage(session, pageID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "Page not found")
		return
	}

	if !page.IsPublished && !canSeeDrafts {
		utils.RespondError(c, http.StatusNotFound, "Page not found")
		return
	}

	if page.IsPublished {
		cache.SetJSON(ctx, cacheKey, page, cache.ContentCacheTTL)
	}
	utils.RespondSuccess(c, http.StatusOK, page)
}

// ListPages : GET /api/pages (admin/editor) — toutes les pages, brouillons inclus
func ListPages(c *gin.Context) {
	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := session.Query(`SELECT page_id, title, slug, is_published, created_at, updated_at FROM pages`).
		WithContext(c.Request.Context()).Iter()

	type pageSummary struct {
		ID          gocql.UUID `json:"id"`
		Title       string     `json:"title"`
		Slug        string     `json:"slug"`
		IsPublished bool       `json:"is_published"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}

	var pages []pageSummary
	var p pageSummary
	for iter.Scan(&p.ID, &p.Title, &p.Slug, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt) {
		pages = append(pages, p)
		p = pageSummary{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture pages: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, pages)
}

// UpdatePage : PUT /api/pages/:id (admin/editor)
func UpdatePage(c *gin.Context) {
	pageID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page id")
		return
	}

	var req struct {
		Title          *string               `json:"title"`
		Sections       *[]models.PageSection `json:"sections"`
		SEOTitle       *string               `json:"seo_title"`
		SEODescription *string               `json:"seo_description"`
		IsPublished    *bool                 `json:"is_published"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Sections != nil {
		for _, s := range *req.Sections {
			if !models.IsValidSectionType(s.Type) {
				utils.RespondError(c, http.StatusBadRequest, "Invalid section type: "+s.Type)
				return
			}
		}
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	page, err := fetchPage(session, pageID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "Page not found")
		return
	}

	old := page

	// Le slug reste stable, les URLs publiques y pointent
	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.Sections != nil {
		page.Sections = *req.Sections
	}
	if req.SEOTitle != nil {
		page.SEOTitle = *req.SEOTitle
	}
	if req.SEODescription != nil {
		page.SEODescription = *req.SEODescription
	}
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}
	page.UpdatedAt = time.Now()

	sectionsJSON, err := json.Marshal(page.Sections)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid sections")
		return
	}

	if err := session.Query(`UPDATE pages SET title = ?, sections = ?, seo_title = ?, seo_description = ?,
		is_published = ?, updated_at = ? WHERE page_id = ?`,
		page.Title, string(sectionsJSON), page.SEOTitle, page.SEODescription,
		page.IsPublished, page.UpdatedAt, pageID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour page: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error updating page")
		return
	}

	cache.InvalidateContentCache(c.Request.Context(), "page:"+page.Slug)
	utils.LogAction(c, "page_update", "page", pageID.String(), old, page)
	utils.RespondSuccess(c, http.StatusOK, page)
}

// DeletePage : DELETE /api/pages/:id (admin)
func DeletePage(c *gin.Context) {
	pageID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page id")
		return
	}

	session, err := database.GetContentSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	page, err := fetchPage(session, pageID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "Page not found")
		return
	}

	if err := session.Query(`DELETE FROM pages WHERE page_id = ?`, pageID).Exec(); err != nil {
		log.Printf("❌ Erreur suppression page: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error deleting page")
		return
	}
	if err := session.Query(`DELETE FROM pages_by_slug WHERE slug = ?`, page.Slug).Exec(); err != nil {
		log.Printf("⚠️ Erreur nettoyage pages_by_slug: %v", err)
	}

	cache.InvalidateContentCache(c.Request.Context(), "page:"+page.Slug)
	utils.LogAction(c, "page_delete", "page", pageID.String(), page, nil)
	utils.RespondMessage(c, http.StatusOK, nil, "Page deleted")
}

func fetchPage(session *gocql.Session, pageID gocql.UUID) (models.Page, error) {
	var page models.Page
	var sectionsJSON string

	if err := session.Query(`SELECT page_id, title, slug, sections, seo_title, seo_description,
		is_published, created_at, updated_at FROM pages WHERE page_id = ?`, pageID).
		Scan(&page.ID, &page.Title, &page.Slug, &sectionsJSON, &page.SEOTitle, &page.SEODescription,
			&page.IsPublished, &page.CreatedAt, &page.UpdatedAt); err != nil {
		return models.Page{}, err
	}

	if sectionsJSON != "" {
		if err := json.Unmarshal([]byte(sectionsJSON), &page.Sections); err != nil {
			log.Printf("⚠️ Sections corrompues pour page %s: %v", pageID, err)
		}
	}
	return page, nil
}

func uniquePageSlug(session *gocql.Session, title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; pageSlugExists(session, candidate); i++ {
		candidate = base + "-" + strconv.Itoa(i)
	}
	return candidate
}

func pageSlugExists(session *gocql.Session, s string) bool {
	var id gocql.UUID
	return session.Query(`SELECT page_id FROM pages_by_slug WHERE slug = ?`, s).Scan(&id) == nil
}

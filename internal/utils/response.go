package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Enveloppe JSON uniforme de l'API :
// {success, data?, message?, error?, pagination?}
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func RespondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func RespondError(c *gin.Context, status int, err string) {
	c.JSON(status, gin.H{"success": false, "error": err})
}

func RespondPaginated(c *gin.Context, status int, data interface{}, p Pagination) {
	c.JSON(status, gin.H{"success": true, "data": data, "pagination": p})
}

// NewPagination calcule le nombre total de pages (au moins 1 si total > 0).
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// ParsePagination lit page/limit depuis la query string avec des bornes saines.
func ParsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		page, limit, total, wantPages int
	}{
		{1, 20, 0, 0},
		{1, 20, 1, 1},
		{1, 20, 20, 1},
		{1, 20, 21, 2},
		{2, 10, 95, 10},
		{1, 0, 50, 0},
	}

	for _, c := range cases {
		p := NewPagination(c.page, c.limit, c.total)
		if p.TotalPages != c.wantPages {
			t.Errorf("NewPagination(%d, %d, %d).TotalPages = %d, attendu %d",
				c.page, c.limit, c.total, p.TotalPages, c.wantPages)
		}
	}
}

func TestParsePaginationBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query               string
		wantPage, wantLimit int
	}{
		{"", 1, 20},
		{"page=3&limit=50", 3, 50},
		{"page=0&limit=0", 1, 20},
		{"page=-5&limit=-1", 1, 20},
		{"limit=500", 1, 100},
		{"page=abc&limit=xyz", 1, 20},
	}

	for _, c := range cases {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		ctx.Request = httptest.NewRequest("GET", "/?"+c.query, nil)

		page, limit := ParsePagination(ctx)
		if page != c.wantPage || limit != c.wantLimit {
			t.Errorf("ParsePagination(%q) = (%d, %d), attendu (%d, %d)",
				c.query, page, limit, c.wantPage, c.wantLimit)
		}
	}
}

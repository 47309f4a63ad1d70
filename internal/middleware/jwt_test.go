package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		t.Fatalf("signature token: %v", err)
	}
	return signed
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	return r
}

func TestAuthRequiredMissingToken(t *testing.T) {
	r := newAuthRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, attendu 401", w.Code)
	}
}

func TestAuthRequiredBadFormat(t *testing.T) {
	r := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, attendu 401", w.Code)
	}
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	r := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer pas.un.jwt")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("code = %d, attendu 403", w.Code)
	}
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	r := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("code = %d, attendu 403", w.Code)
	}
}

func TestAuthRequiredValidToken(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"user_id": "user-1",
		"email":   "u@example.com",
		"role":    "customer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	r := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, attendu 200 (body: %s)", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/staff", AuthRequired(), RequireRole("admin", "editor"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"editor", http.StatusOK},
		{"customer", http.StatusForbidden},
	}

	for _, c := range cases {
		token := signTestToken(t, jwt.MapClaims{
			"user_id": "user-1",
			"role":    c.role,
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		if w.Code != c.want {
			t.Errorf("role %s: code = %d, attendu %d", c.role, w.Code, c.want)
		}
	}
}

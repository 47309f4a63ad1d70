package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r)
	return r
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// Le changement de statut vit sous /api/orders, pas sous le préfixe back-office.
func TestOrderStatusRoute(t *testing.T) {
	r := newTestRouter()

	// Sans token le middleware répond 401 : la route existe
	if w := do(r, "PUT", "/api/orders/1b4e28ba-2fa1-11d2-883f-0016d3cca427/status"); w.Code != http.StatusUnauthorized {
		t.Errorf("PUT /api/orders/:id/status sans token: code = %d, attendu 401", w.Code)
	}

	if w := do(r, "PUT", "/api/admin/orders/1b4e28ba-2fa1-11d2-883f-0016d3cca427/status"); w.Code != http.StatusNotFound {
		t.Errorf("PUT /api/admin/orders/:id/status: code = %d, attendu 404", w.Code)
	}
}

func TestStripeWebhookRoute(t *testing.T) {
	r := newTestRouter()

	// Corps vide : 400 du handler, donc la route est bien enregistrée
	if w := do(r, "POST", "/api/payments/webhook"); w.Code != http.StatusBadRequest {
		t.Errorf("POST /api/payments/webhook: code = %d, attendu 400", w.Code)
	}

	if w := do(r, "POST", "/api/payment/webhook"); w.Code != http.StatusNotFound {
		t.Errorf("POST /api/payment/webhook: code = %d, attendu 404", w.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	r := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/admin/inventory/movements"},
		{"GET", "/api/admin/inventory/alerts"},
		{"GET", "/api/admin/inventory/alerts/live"},
		{"GET", "/api/admin/audit-logs"},
	}

	for _, p := range paths {
		if w := do(r, p.method, p.path); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s sans token: code = %d, attendu 401", p.method, p.path, w.Code)
		}
	}
}

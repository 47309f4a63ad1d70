package order

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// OrderSummary : ligne de listing (sans les items, sans l'adresse)
type OrderSummary struct {
	ID          gocql.UUID `json:"id"`
	OrderNumber string     `json:"order_number"`
	UserID      string     `json:"user_id"`
	TotalAmount float64    `json:"total_amount"`
	Status      string     `json:"status"`
	CreatedAt   string     `json:"created_at"`
}

// ListOrders : GET /api/orders?page=&limit=&status=&user_id=
// Un non-admin est TOUJOURS restreint à ses propres commandes, quels que
// soient les paramètres fournis.
func ListOrders(c *gin.Context) {
	callerID := c.GetString("user_id")
	isAdmin := c.GetString("role") == models.RoleAdmin

	page, limit := utils.ParsePagination(c)
	statusFilter := c.Query("status")
	if statusFilter != "" && !models.IsValidOrderStatus(statusFilter) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid status filter")
		return
	}

	targetUser := callerID
	if isAdmin {
		if requested := c.Query("user_id"); requested != "" {
			targetUser = requested
		} else {
			targetUser = "" // admin sans filtre : toutes les commandes
		}
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var iter *gocql.Iter
	if targetUser != "" {
		// Table dénormalisée, triée par created_at DESC
		iter = session.Query(`SELECT order_id, order_number, user_id, total_amount, status, created_at
			FROM orders_by_user WHERE user_id = ?`, targetUser).WithContext(c.Request.Context()).Iter()
	} else {
		iter = session.Query(`SELECT order_id, order_number, user_id, total_amount, status, created_at
			FROM orders`).WithContext(c.Request.Context()).Iter()
	}

	var all []OrderSummary
	var s OrderSummary
	var createdAt time.Time
	for iter.Scan(&s.ID, &s.OrderNumber, &s.UserID, &s.TotalAmount, &s.Status, &createdAt) {
		if statusFilter != "" && s.Status != statusFilter {
			s = OrderSummary{}
			continue
		}
		s.CreatedAt = createdAt.Format(time.RFC3339)
		all = append(all, s)
		s = OrderSummary{}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	utils.RespondPaginated(c, http.StatusOK, all[start:end], utils.NewPagination(page, limit, total))
}

// orderDetail joint la commande à un résumé de son client
type orderDetail struct {
	*models.Order
	Customer *models.User `json:"customer,omitempty"`
}

// GetOrderByID : GET /api/orders/:id — commande complète avec ses lignes
// et un résumé du client (email, nom, rôle)
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	isAdmin := c.GetString("role") == models.RoleAdmin

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := defaultStore.GetOrderScoped(c.Request.Context(), orderID, userID, isAdmin)
	if err != nil {
		status, msg := orderErrorResponse(err)
		utils.RespondError(c, status, msg)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, orderDetail{
		Order:    o,
		Customer: lookupCustomer(c, o.UserID),
	})
}

// lookupCustomer résout le propriétaire de la commande (best effort, la
// commande porte déjà ses snapshots produit)
func lookupCustomer(c *gin.Context, userID string) *models.User {
	stmt := database.GetPreparedGetUserByID()
	if stmt == nil {
		return nil
	}

	var user models.User
	var hashedPassword string
	var createdAt time.Time
	user.ID = userID
	if err := stmt.Bind(userID).
		WithContext(c.Request.Context()).
		Scan(&user.Email, &hashedPassword, &user.Name, &user.Role, &user.Provider, &createdAt); err != nil {
		log.Printf("⚠️ Client %s introuvable pour la commande: %v", userID, err)
		return nil
	}

	return &user
}

// UpdateOrderStatus : PUT /api/orders/:id/status (admin/editor)
// Toute paire status/payment_status valide est acceptée (override admin),
// mais une transition non adjacente au cycle de vie est consignée dans l'audit.
func UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Status == "" && req.PaymentStatus == "" {
		utils.RespondError(c, http.StatusBadRequest, "status or payment_status is required")
		return
	}
	if req.Status != "" && !models.IsValidOrderStatus(req.Status) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}
	if req.PaymentStatus != "" && !models.IsValidPaymentStatus(req.PaymentStatus) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid payment_status: "+req.PaymentStatus)
		return
	}

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := defaultStore.GetOrderScoped(c.Request.Context(), orderID, "", true)
	if err != nil {
		status, msg := orderErrorResponse(err)
		utils.RespondError(c, status, msg)
		return
	}

	newStatus := o.Status
	if req.Status != "" {
		newStatus = req.Status
	}
	newPaymentStatus := o.PaymentStatus
	if req.PaymentStatus != "" {
		newPaymentStatus = req.PaymentStatus
	}

	if req.Status != "" && req.Status != o.Status && !models.IsAdjacentTransition(o.Status, req.Status) {
		log.Printf("⚠️ Transition forcée %s → %s sur commande %s", o.Status, req.Status, o.OrderNumber)
		utils.LogFlaggedAction(c, "order_status_override", "order", orderID.String(),
			gin.H{"status": o.Status}, gin.H{"status": req.Status})
	} else {
		utils.LogAction(c, "order_status_update", "order", orderID.String(),
			gin.H{"status": o.Status, "payment_status": o.PaymentStatus},
			gin.H{"status": newStatus, "payment_status": newPaymentStatus})
	}

	if err := defaultStore.SetOrderStatus(c.Request.Context(), orderID, newStatus, newPaymentStatus); err != nil {
		log.Printf("❌ Erreur mise à jour statut commande: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	o.Status = newStatus
	o.PaymentStatus = newPaymentStatus
	utils.RespondMessage(c, http.StatusOK, o, "Order updated")
}

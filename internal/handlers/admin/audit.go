package admin

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/utils"
)

// GetAuditLogs : GET /api/admin/audit-logs?user_id=&action=&resource=&flagged=&limit=
func GetAuditLogs(c *gin.Context) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	userID := c.Query("user_id")
	action := c.Query("action")
	resource := c.Query("resource")
	flagged := c.Query("flagged")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit > 500 {
		limit = 500
	}

	baseQuery := `SELECT id, user_id, user_email, action, resource, resource_id,
		old_value, new_value, ip_address, flagged, timestamp FROM audit_logs`

	var conditions []string
	var args []interface{}

	if userID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, userID)
	}
	if action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, action)
	}
	if resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, resource)
	}
	if flagged != "" {
		flaggedBool, _ := strconv.ParseBool(flagged)
		conditions = append(conditions, "flagged = ?")
		args = append(args, flaggedBool)
	}

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			query += " AND " + conditions[i]
		}
		query += " ALLOW FILTERING"
	}
	query += " LIMIT ?"
	args = append(args, limit)

	iter := usersSession.Query(query, args...).WithContext(c.Request.Context()).Iter()

	var logs []utils.AuditLog
	var entry utils.AuditLog

	for iter.Scan(&entry.ID, &entry.UserID, &entry.UserEmail, &entry.Action, &entry.Resource,
		&entry.ResourceID, &entry.OldValue, &entry.NewValue, &entry.IPAddress,
		&entry.Flagged, &entry.Timestamp) {
		logs = append(logs, entry)
		entry = utils.AuditLog{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération logs audit: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
	})
}

// GetAuditLogsByResource : GET /api/admin/audit-logs/:resource/:resource_id
func GetAuditLogsByResource(c *gin.Context) {
	resource := c.Param("resource")
	resourceID := c.Param("resource_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit > 200 {
		limit = 200
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	iter := usersSession.Query(`SELECT id, user_id, user_email, action, resource, resource_id,
		old_value, new_value, ip_address, flagged, timestamp FROM audit_logs
		WHERE resource = ? AND resource_id = ? LIMIT ? ALLOW FILTERING`,
		resource, resourceID, limit).WithContext(c.Request.Context()).Iter()

	var logs []utils.AuditLog
	var entry utils.AuditLog

	for iter.Scan(&entry.ID, &entry.UserID, &entry.UserEmail, &entry.Action, &entry.Resource,
		&entry.ResourceID, &entry.OldValue, &entry.NewValue, &entry.IPAddress,
		&entry.Flagged, &entry.Timestamp) {
		logs = append(logs, entry)
		entry = utils.AuditLog{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération logs audit: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{
		"resource":    resource,
		"resource_id": resourceID,
		"logs":        logs,
		"total":       len(logs),
	})
}

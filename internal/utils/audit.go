package utils

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/database"
)

type AuditLog struct {
	ID         gocql.UUID `json:"id"`
	UserID     string     `json:"user_id"`
	UserEmail  string     `json:"user_email"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resource_id"`
	OldValue   string     `json:"old_value,omitempty"`
	NewValue   string     `json:"new_value,omitempty"`
	IPAddress  string     `json:"ip_address"`
	Flagged    bool       `json:"flagged"`
	Timestamp  time.Time  `json:"timestamp"`
}

// LogAction enregistre une action admin dans les logs d'audit (asynchrone)
func LogAction(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}) {
	logAction(c, action, resource, resourceID, oldValue, newValue, false)
}

// LogFlaggedAction enregistre une action suspecte (ex: transition de statut
// non adjacente forcée par un admin)
func LogFlaggedAction(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}) {
	logAction(c, action, resource, resourceID, oldValue, newValue, true)
}

func logAction(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}, flagged bool) {
	userID := c.GetString("user_id")
	userEmail := c.GetString("email")
	ip := c.ClientIP()

	go func() {
		usersSession, err := database.GetUsersSession()
		if err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
			return
		}

		var oldValueStr, newValueStr string
		if oldValue != nil {
			if b, err := json.Marshal(oldValue); err == nil {
				oldValueStr = string(b)
			}
		}
		if newValue != nil {
			if b, err := json.Marshal(newValue); err == nil {
				newValueStr = string(b)
			}
		}

		query := `
			INSERT INTO audit_logs (
				id, user_id, user_email, action, resource, resource_id,
				old_value, new_value, ip_address, flagged, timestamp
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		if err := usersSession.Query(query,
			gocql.TimeUUID(), userID, userEmail, action, resource, resourceID,
			oldValueStr, newValueStr, ip, flagged, time.Now(),
		).Exec(); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

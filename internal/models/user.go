package models

import "time"

// Rôles applicatifs (voir middleware.RequireRole)
const (
	RoleAdmin    = "admin"
	RoleEditor   = "editor"
	RoleCustomer = "customer"
)

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Provider  string     `json:"provider,omitempty"` // "local", "google", "facebook"
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

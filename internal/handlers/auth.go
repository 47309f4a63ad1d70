package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// Register : POST /api/auth/register — compte local, rôle customer
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Email déjà pris ?
	var existingID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).
		WithContext(c.Request.Context()).Scan(&existingID); err == nil {
		utils.RespondError(c, http.StatusConflict, "An account with this email already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		log.Printf("❌ Erreur hash mot de passe: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := time.Now()
	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      input.Name,
		Role:      models.RoleCustomer,
		Provider:  "local",
		CreatedAt: &now,
	}

	if err := database.GetPreparedInsertUser().
		Bind(user.ID, user.Email, hashedPassword, user.Name, user.Role, user.Provider, now, now).
		WithContext(c.Request.Context()).Exec(); err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Error creating user")
		return
	}

	if err := database.GetPreparedInsertUserByEmail().Bind(user.Email, user.ID).
		WithContext(c.Request.Context()).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation users_by_email: %v", err)
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Printf("✅ Utilisateur créé: %s", user.Email)
	utils.RespondSuccess(c, http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

// Login : POST /api/auth/login — protégé par middleware.LoginRateLimit
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var userID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).
		WithContext(c.Request.Context()).Scan(&userID); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	var user models.User
	var hashedPassword string
	var createdAt time.Time
	user.ID = userID
	if err := database.GetPreparedGetUserByID().Bind(userID).
		WithContext(c.Request.Context()).
		Scan(&user.Email, &hashedPassword, &user.Name, &user.Role, &user.Provider, &createdAt); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// Un compte OAuth n'a pas de mot de passe local
	if hashedPassword == "" || !utils.IsArgon2Hash(hashedPassword) {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	ok, err := utils.VerifyPassword(input.Password, hashedPassword)
	if err != nil || !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

// Me : GET /api/auth/me (authentifié)
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	var hashedPassword string
	var createdAt time.Time
	user.ID = userID
	if err := database.GetPreparedGetUserByID().Bind(userID).
		WithContext(c.Request.Context()).
		Scan(&user.Email, &hashedPassword, &user.Name, &user.Role, &user.Provider, &createdAt); err != nil {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}
	user.CreatedAt = &createdAt

	utils.RespondSuccess(c, http.StatusOK, user)
}

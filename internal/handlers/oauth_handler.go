package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// BeginAuth : GET /api/auth/:provider — démarre le flux OAuth.
// Les providers sont enregistrés au démarrage (voir cmd/server/main.go).
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		utils.RespondError(c, http.StatusBadRequest, "No provider specified")
		return
	}

	state := generateRandomState()
	if redirectURL := c.Query("redirect_url"); redirectURL != "" {
		database.Redis.Set(c.Request.Context(), "oauth_redirect:"+state, redirectURL, 10*time.Minute)
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth : GET /api/auth/:provider/callback — fin du flux OAuth,
// création ou fusion du compte puis redirection front avec le JWT.
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		utils.RespondError(c, http.StatusBadRequest, "No provider specified")
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Erreur OAuth %s: %v", provider, err)
		utils.RespondError(c, http.StatusBadRequest, "OAuth authentication failed")
		return
	}
	if gothUser.Email == "" {
		utils.RespondError(c, http.StatusBadRequest, "Provider did not return an email")
		return
	}

	user, err := findOrCreateOAuthUser(c, provider, gothUser.Email, gothUser.Name)
	if err != nil {
		log.Printf("❌ Erreur utilisateur OAuth: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	redirectToFrontend(c, token)
}

// findOrCreateOAuthUser cherche le compte par email, le crée s'il n'existe
// pas, et rattache le provider à un compte local existant.
func findOrCreateOAuthUser(c *gin.Context, provider, email, name string) (models.User, error) {
	ctx := c.Request.Context()
	email = strings.ToLower(strings.TrimSpace(email))

	session, err := database.GetUsersSession()
	if err != nil {
		return models.User{}, err
	}

	var userID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).WithContext(ctx).Scan(&userID); err == nil {
		var user models.User
		var hashedPassword string
		var createdAt time.Time
		user.ID = userID
		if err := database.GetPreparedGetUserByID().Bind(userID).WithContext(ctx).
			Scan(&user.Email, &hashedPassword, &user.Name, &user.Role, &user.Provider, &createdAt); err != nil {
			return models.User{}, err
		}

		if user.Provider != provider {
			if err := session.Query(`UPDATE users SET provider = ?, updated_at = ? WHERE user_id = ?`,
				provider, time.Now(), userID).WithContext(ctx).Exec(); err != nil {
				log.Printf("⚠️ Erreur fusion provider %s pour %s: %v", provider, email, err)
			} else {
				log.Printf("🔄 Compte existant fusionné avec provider %s : %s", provider, email)
			}
			user.Provider = provider
		}
		return user, nil
	}

	now := time.Now()
	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Role:      models.RoleCustomer,
		Provider:  provider,
		CreatedAt: &now,
	}

	// Pas de mot de passe local pour un compte OAuth
	if err := database.GetPreparedInsertUser().
		Bind(user.ID, user.Email, "", user.Name, user.Role, user.Provider, now, now).
		WithContext(ctx).Exec(); err != nil {
		return models.User{}, err
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(user.Email, user.ID).
		WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation users_by_email: %v", err)
	}

	log.Printf("🆕 Utilisateur OAuth créé (%s) : %s", provider, email)
	return user, nil
}

func redirectToFrontend(c *gin.Context, token string) {
	state := c.Query("state")
	ctx := c.Request.Context()

	redirectURI, _ := database.Redis.Get(ctx, "oauth_redirect:"+state).Result()
	database.Redis.Del(ctx, "oauth_redirect:"+state)

	if redirectURI == "" {
		redirectURI = os.Getenv("FRONTEND_URL")
		if redirectURI == "" {
			redirectURI = "http://localhost:5173"
		}
	}

	allowed := strings.Split(os.Getenv("OAUTH_ALLOWED_REDIRECTS"), ",")
	allowed = append(allowed, "http://localhost:5173", "http://localhost:3000")
	valid := false
	for _, o := range allowed {
		if o != "" && strings.HasPrefix(redirectURI, o) {
			valid = true
			break
		}
	}
	if !valid {
		utils.RespondError(c, http.StatusBadRequest, "Redirect url not allowed")
		return
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURI+sep+"token="+url.QueryEscape(token))
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

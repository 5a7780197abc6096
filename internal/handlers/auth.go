package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"findhome/internal/auth"
	"findhome/internal/metrics"
	"findhome/internal/models"
	"findhome/internal/services"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	authService   *services.AuthService
	authenticator *auth.Authenticator
	metrics       *metrics.Metrics
	secureCookie  bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, authenticator *auth.Authenticator, m *metrics.Metrics, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		authenticator: authenticator,
		metrics:       m,
		secureCookie:  secureCookie,
	}
}

type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RegisterForm describes the registration form
// GET /register/
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": []string{"username", "first_name", "last_name", "email", "user_type", "phone", "password1", "password2"},
		"user_types": []choice{
			{Value: string(models.UserTypeRenter), Label: models.UserTypeRenter.Label()},
			{Value: string(models.UserTypeOwner), Label: models.UserTypeOwner.Label()},
		},
	})
}

// Register creates an account and signs it in
// POST /register/
func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindForm(c, &input) {
		return
	}

	session, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "")
		return
	}

	h.metrics.Record(metrics.EventRegistered)
	h.signIn(c, session, services.MsgRegistered)
}

// LoginForm describes the login form
// GET /login/
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "password"}})
}

// Login checks credentials and issues a token
// POST /login/
func (h *AuthHandler) Login(c *gin.Context) {
	var input services.LoginInput
	if !bindForm(c, &input) {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "")
		return
	}
	h.signIn(c, session, "")
}

// Logout revokes the presented token and clears the cookie
// GET|POST /logout/
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authenticator.Revoke(c); err != nil {
		log.Error().Err(err).Msg("Failed to revoke token on logout")
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.secureCookie, true)
	redirect(c, homePath, services.MsgLoggedOut)
}

// Me returns the authenticated user with its profile
// GET /me/
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (h *AuthHandler) signIn(c *gin.Context, session *services.Session, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, session.Token, int(auth.TokenTTL().Seconds()), "/", "", h.secureCookie, true)

	body := gin.H{
		"success":  true,
		"redirect": dashboardPath,
		"token":    session.Token,
		"user":     session.User,
	}
	if message != "" {
		body["message"] = message
	}
	c.Header("Location", dashboardPath)
	c.JSON(http.StatusSeeOther, body)
}

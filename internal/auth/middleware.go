package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"findhome/internal/models"
)

// CookieName is the cookie that carries the token for browser clients
const CookieName = "findhome_token"

const (
	ctxUserID       = "user_id"
	ctxUser         = "user"
	ctxTokenID      = "token_id"
	ctxTokenExpires = "token_expires"
)

var errNoToken = errors.New("authorization required")

// Authenticator resolves bearer tokens into active users
type Authenticator struct {
	db      *gorm.DB
	revoker TokenRevoker
}

// NewAuthenticator creates an Authenticator. revoker may be nil.
func NewAuthenticator(db *gorm.DB, revoker TokenRevoker) *Authenticator {
	return &Authenticator{db: db, revoker: revoker}
}

// AuthMiddleware validates JWT tokens and protects routes
func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.authenticate(c); err != nil {
			message := "Invalid or expired token"
			if errors.Is(err, errNoToken) {
				message = "Authorization required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never rejects
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.authenticate(c); err != nil && !errors.Is(err, errNoToken) {
			log.Debug().Err(err).Msg("ignoring invalid token on public route")
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) error {
	tokenString := extractToken(c)
	if tokenString == "" {
		return errNoToken
	}

	claims, err := ValidateToken(tokenString)
	if err != nil {
		return err
	}

	if a.revoker != nil && claims.ID != "" {
		revoked, err := a.revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error().Err(err).Msg("token revocation lookup failed")
			return err
		}
		if revoked {
			return errors.New("token revoked")
		}
	}

	var user models.User
	if err := a.db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
		return err
	}
	if !user.IsActive {
		return errors.New("user inactive")
	}

	c.Set(ctxUserID, user.ID)
	c.Set(ctxUser, &user)
	c.Set(ctxTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(ctxTokenExpires, claims.ExpiresAt.Time)
	}
	return nil
}

// Revoke invalidates the token attached to the current request, if any
func (a *Authenticator) Revoke(c *gin.Context) error {
	if a.revoker == nil {
		return nil
	}
	tokenID := c.GetString(ctxTokenID)
	if tokenID == "" {
		return nil
	}
	ttl := TokenTTL()
	if expires, ok := c.Get(ctxTokenExpires); ok {
		if t, ok := expires.(time.Time); ok {
			ttl = time.Until(t)
		}
	}
	return a.revoker.Revoke(c.Request.Context(), tokenID, ttl)
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint)
	return id, ok
}

// GetUser retrieves the authenticated user from the context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ctxUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	return user, ok
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"findhome/internal/auth"
	"findhome/internal/services"
)

// Redirect targets
const (
	homePath      = "/"
	dashboardPath = "/dashboard/"
)

func listingPath(id uint) string {
	return "/listing/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// redirect answers a form style request with 303 See Other. message may be empty.
func redirect(c *gin.Context, location, message string) {
	body := gin.H{"success": true, "redirect": location}
	if message != "" {
		body["message"] = message
	}
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, body)
}

// redirectWithError is redirect for rejected requests
func redirectWithError(c *gin.Context, location, message string) {
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, gin.H{"success": false, "error": message, "redirect": location})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

// respondError maps a service error to a response. Access errors redirect to
// deniedTo, or answer 403 when deniedTo is empty.
func respondError(c *gin.Context, err error, deniedTo string) {
	var accessErr *services.AccessError
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &accessErr):
		if deniedTo == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": accessErr.Message})
			return
		}
		redirectWithError(c, deniedTo, accessErr.Message)
	case errors.Is(err, services.ErrNotFound):
		notFound(c)
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": validationErr.Fields})
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pathID parses an integer path parameter. Anything else does not match a
// route and answers 404.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		notFound(c)
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the authenticated user, zero for anonymous requests
func currentUserID(c *gin.Context) uint {
	id, _ := auth.GetUserID(c)
	return id
}

func bindForm(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBind(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return false
	}
	return true
}

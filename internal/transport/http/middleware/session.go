package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/usecase"
)

// SessionValidator resolves a session cookie value to a live session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// SessionOptions configures the session middleware.
type SessionOptions struct {
	CookieName string
	// RedirectTo sends unauthenticated browsers to a page instead of
	// returning 401 JSON. Leave empty for API routes.
	RedirectTo string
}

// RequireSession authenticates requests by their session cookie and stores
// the resolved session and username in the Gin context.
func RequireSession(validator SessionValidator, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(opts.CookieName)
		if err != nil || sessionID == "" {
			abortUnauthenticated(c, opts)
			return
		}

		session, err := validator.ValidateSession(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, usecase.ErrSessionNotFound) {
				abortUnauthenticated(c, opts)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":  false,
				"error":    "internal server error",
				"trace_id": GetTraceID(c),
			})
			return
		}

		c.Set(SessionKey, session)
		c.Set(UsernameKey, session.Username)
		c.Next()
	}
}

// GetSession retrieves the session placed in the context by RequireSession.
func GetSession(c *gin.Context) (*domain.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*domain.Session)
	return session, ok
}

// GetUsername retrieves the authenticated username, if any.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(UsernameKey); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

func abortUnauthenticated(c *gin.Context, opts SessionOptions) {
	if opts.RedirectTo != "" {
		c.Redirect(http.StatusSeeOther, opts.RedirectTo)
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":  false,
		"error":    "authentication required",
		"trace_id": GetTraceID(c),
	})
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JorgeDuranS/AppSegura/internal/infra/security"
)

// CSRFHeader carries the token on API requests.
const CSRFHeader = "X-CSRF-Token"

// csrfFormField is the fallback for classic form posts.
const csrfFormField = "csrf_token"

// RequireCSRF rejects state-changing requests whose token does not match the
// session's. Must run after RequireSession.
func RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		session, ok := GetSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":  false,
				"error":    "authentication required",
				"trace_id": GetTraceID(c),
			})
			return
		}

		provided := c.GetHeader(CSRFHeader)
		if provided == "" {
			provided = c.PostForm(csrfFormField)
		}

		if !security.VerifyCSRFToken(session.CSRFToken, provided) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":  false,
				"error":    "invalid or missing CSRF token",
				"trace_id": GetTraceID(c),
			})
			return
		}

		c.Next()
	}
}

package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/infra/config"
	"github.com/JorgeDuranS/AppSegura/internal/transport/http/middleware"
	"github.com/JorgeDuranS/AppSegura/internal/usecase"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	registration *usecase.RegistrationService
	auth         *usecase.AuthService
	sessionCfg   config.SessionSettings
	logger       *zap.Logger
}

// NewAuthHandler builds a new auth handler instance.
func NewAuthHandler(
	registration *usecase.RegistrationService,
	auth *usecase.AuthService,
	sessionCfg config.SessionSettings,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		auth:         auth,
		sessionCfg:   sessionCfg,
		logger:       log,
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username and password are required"))
		return
	}

	_, err := h.registration.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserExists, Status: http.StatusBadRequest, Message: "username already exists"},
		}, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := NewSuccessResponse(c, "account created, you can now sign in")
	resp.Redirect = "/login"
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/login. A successful login sets the session cookie;
// the CSRF token travels in the response header for API clients and is also
// available to templates via the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username and password are required"))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		var limited *usecase.RateLimitedError
		if errors.As(err, &limited) {
			seconds := int(math.Ceil(limited.RetryAfter.Seconds()))
			if seconds < 0 {
				seconds = 0
			}
			c.Writer.Header().Set("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, NewErrorResponse(c, "too many login attempts, try again later"))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid username or password"},
			{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "too many login attempts, try again later"},
		}, http.StatusInternalServerError, "internal server error")
		return
	}

	h.setSessionCookie(c, session.ID, int(h.sessionCfg.TTL.Seconds()))
	c.Writer.Header().Set(middleware.CSRFHeader, session.CSRFToken)

	resp := NewSuccessResponse(c, "signed in")
	resp.Redirect = "/data"
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/logout and clears the cookie either way.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(h.sessionCfg.CookieName)
	if err == nil && sessionID != "" {
		if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
			h.logger.Warn("Logout failed", zap.Error(err))
		}
	}

	h.setSessionCookie(c, "", -1)

	resp := NewSuccessResponse(c, "signed out")
	resp.Redirect = "/login"
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.sessionCfg.CookieName,
		value,
		maxAge,
		"/",
		h.sessionCfg.CookieDomain,
		h.sessionCfg.Secure,
		true, // HttpOnly always; scripts never read the session
	)
}

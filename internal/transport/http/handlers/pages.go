package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JorgeDuranS/AppSegura/internal/transport/http/middleware"
)

// PageHandler renders the HTML pages. All state lives behind the JSON API;
// the pages are thin shells that talk to it.
type PageHandler struct{}

// NewPageHandler builds a new page handler instance.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index renders the landing page.
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

// Login renders the sign-in page.
func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// Register renders the account creation page.
func (h *PageHandler) Register(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// Data renders the vault page. Runs behind RequireSession in redirect mode,
// so the session is always present here. The CSRF token is handed to the
// page for its API calls.
func (h *PageHandler) Data(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	c.HTML(http.StatusOK, "data.html", gin.H{
		"Username":  session.Username,
		"CSRFToken": session.CSRFToken,
	})
}

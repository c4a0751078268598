package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
)

func csrfRouter(session *domain.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	inject := func(c *gin.Context) {
		if session != nil {
			c.Set(SessionKey, session)
			c.Set(UsernameKey, session.Username)
		}
		c.Next()
	}
	router.POST("/api/data", inject, RequireCSRF(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	router.GET("/api/data", inject, RequireCSRF(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func testSession() *domain.Session {
	return &domain.Session{
		ID:        "sess-1",
		Username:  "alice",
		CSRFToken: "expected-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestRequireCSRFAcceptsHeaderToken(t *testing.T) {
	router := csrfRouter(testSession())

	req := httptest.NewRequest(http.MethodPost, "/api/data", nil)
	req.Header.Set(CSRFHeader, "expected-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireCSRFAcceptsFormToken(t *testing.T) {
	router := csrfRouter(testSession())

	body := strings.NewReader("csrf_token=expected-token")
	req := httptest.NewRequest(http.MethodPost, "/api/data", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireCSRFRejectsMissingOrWrongToken(t *testing.T) {
	router := csrfRouter(testSession())

	req := httptest.NewRequest(http.MethodPost, "/api/data", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing token status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/data", nil)
	req.Header.Set(CSRFHeader, "wrong-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong token status = %d, want 400", rec.Code)
	}
}

func TestRequireCSRFSkipsSafeMethods(t *testing.T) {
	router := csrfRouter(testSession())

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET without token status = %d, want 200", rec.Code)
	}
}

func TestRequireCSRFRequiresSession(t *testing.T) {
	router := csrfRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/data", nil)
	req.Header.Set(CSRFHeader, "expected-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

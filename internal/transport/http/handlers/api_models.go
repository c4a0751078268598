package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JorgeDuranS/AppSegura/internal/transport/http/middleware"
)

// APIResponse is the envelope for every JSON endpoint. Success responses
// carry Message and optionally Redirect; failures carry Error and optionally
// the offending Field.
type APIResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Field    string `json:"field,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates a failure envelope with the trace ID attached.
func NewErrorResponse(c *gin.Context, errorMsg string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// NewSuccessResponse creates a success envelope with the trace ID attached.
func NewSuccessResponse(c *gin.Context, message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		TraceID: middleware.GetTraceID(c),
	}
}

// CredentialsRequest is the payload for login and registration. Both form
// posts and JSON bodies are accepted.
type CredentialsRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// SaveDataRequest is the payload for storing the user's blob.
type SaveDataRequest struct {
	Data string `form:"data" json:"data" binding:"required"`
}

// DataResponse returns the decrypted blob to its owner.
type DataResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	TraceID string `json:"trace_id,omitempty"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

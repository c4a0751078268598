package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/transport/http/middleware"
	"github.com/JorgeDuranS/AppSegura/internal/usecase"
)

// VaultHandler serves the encrypted per-user blob.
type VaultHandler struct {
	vault  *usecase.VaultService
	logger *zap.Logger
}

// NewVaultHandler builds a new vault handler instance.
func NewVaultHandler(vault *usecase.VaultService, log *zap.Logger) *VaultHandler {
	return &VaultHandler{vault: vault, logger: log}
}

// Save handles POST /api/data. Runs behind RequireSession and RequireCSRF.
func (h *VaultHandler) Save(c *gin.Context) {
	username := middleware.GetUsername(c)

	var req SaveDataRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "data is required"))
		return
	}

	if err := h.vault.Save(c.Request.Context(), username, req.Data); err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(c, "data saved"))
}

// Load handles GET /api/data. A decryption failure is a 500; the client gets
// no detail beyond that, the cause lands in the logs.
func (h *VaultHandler) Load(c *gin.Context) {
	username := middleware.GetUsername(c)

	data, err := h.vault.Load(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, usecase.ErrNoData) {
			c.JSON(http.StatusOK, DataResponse{
				Success: true,
				Data:    "",
				TraceID: middleware.GetTraceID(c),
			})
			return
		}
		h.logger.Error("Failed to load user data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal server error"))
		return
	}

	c.JSON(http.StatusOK, DataResponse{
		Success: true,
		Data:    data,
		TraceID: middleware.GetTraceID(c),
	})
}

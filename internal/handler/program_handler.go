package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/middleware"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type programService interface {
	List(ctx context.Context) ([]models.ProgramChoice, bool, error)
}

// ProgramHandler serves the program selector.
type ProgramHandler struct {
	service programService
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(svc programService) *ProgramHandler {
	return &ProgramHandler{service: svc}
}

// List godoc
// @Summary List program choices
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs, cacheHit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, programs, nil, middleware.ExtractMeta(c))
}

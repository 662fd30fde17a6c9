package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

type invitationService interface {
	List(ctx context.Context, filter models.InvitationFilter) ([]models.Invitation, error)
	Create(ctx context.Context, actor *models.JWTClaims, req models.CreateInvitationRequest) (*models.CreateInvitationResult, error)
	Resend(ctx context.Context, id string) (*models.ResendInvitationResult, error)
	Cancel(ctx context.Context, id string) (*models.Invitation, error)
}

// InvitationHandler serves the invitation lifecycle endpoints.
type InvitationHandler struct {
	service invitationService
}

// NewInvitationHandler creates a new invitation handler.
func NewInvitationHandler(svc invitationService) *InvitationHandler {
	return &InvitationHandler{service: svc}
}

// List godoc
// @Summary List invitations
// @Tags Invitations
// @Produce json
// @Param role query string false "Role filter"
// @Param status query string false "Invitation status filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /admin/invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	filter := models.InvitationFilter{
		Role:   optionalRole(c.Query("role")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if status := c.Query("status"); status != "" {
		s := models.InvitationStatus(status)
		filter.Status = &s
	}

	invitations, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, invitations, &models.Pagination{Page: 1, PageSize: len(invitations), TotalCount: len(invitations)})
}

// Create godoc
// @Summary Invite a user
// @Description Creates a pending invitation and sends its email. A failed email still creates the invitation and reports email_error.
// @Tags Invitations
// @Accept json
// @Produce json
// @Param payload body models.CreateInvitationRequest true "Invitation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, result.Message, result)
}

// Resend godoc
// @Summary Resend invitation
// @Tags Invitations
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/invitations/{id}/resend [post]
func (h *InvitationHandler) Resend(c *gin.Context) {
	result, err := h.service.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, result.Message, result)
}

// Cancel godoc
// @Summary Cancel invitation
// @Tags Invitations
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/invitations/{id}/cancel [post]
func (h *InvitationHandler) Cancel(c *gin.Context) {
	inv, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Invitation cancelled", inv)
}

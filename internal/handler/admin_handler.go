package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/middleware"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	complaints complaintService
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(complaints complaintService) *AdminHandler {
	return &AdminHandler{complaints: complaints}
}

// ListComplaints godoc
// @Summary List complaints
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter"
// @Param category query string false "Category filter"
// @Param assigned_to query string false "Assignee id"
// @Param page query int false "Page"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/complaints [get]
func (h *AdminHandler) ListComplaints(c *gin.Context) {
	var query dto.ComplaintListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	if query.AssignedTo == "" {
		query.AssignedTo = c.Query("assignedTo")
	}
	if raw := c.Query("pageSize"); query.PageSize == 0 && raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
			return
		}
		query.PageSize = size
	}
	items, pagination, err := h.complaints.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Stats godoc
// @Summary Complaint counts by status
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/complaints/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, hit, err := h.complaints.AggregateStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Escalated godoc
// @Summary Escalated complaints
// @Description IN PROGRESS complaints older than the escalation threshold, oldest first
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/complaints/escalated [get]
func (h *AdminHandler) Escalated(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.complaints.ListEscalated(c.Request.Context()), nil)
}

// Assign godoc
// @Summary Assign complaint to officer
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.AssignComplaintRequest true "Officer"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/complaints/{id}/assign [put]
func (h *AdminHandler) Assign(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.AssignComplaintRequest
	if !bindJSON(c, &req, "Invalid complaint or officer ID") {
		return
	}
	complaint, err := h.complaints.Assign(c.Request.Context(), actor, c.Param("id"), req.OfficerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// SetStatus godoc
// @Summary Change complaint status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/complaints/{id}/status [put]
func (h *AdminHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.complaints)
}

// Resolve godoc
// @Summary Resolve complaint
// @Tags Admin
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/complaints/{id}/resolve [put]
func (h *AdminHandler) Resolve(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	complaint, err := h.complaints.Resolve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

func setStatus(c *gin.Context, complaints complaintService) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req, "status is required") {
		return
	}
	complaint, err := complaints.SetStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

// OfficerHandler serves the officer workspace.
type OfficerHandler struct {
	complaints complaintService
}

// NewOfficerHandler constructs an officer handler.
func NewOfficerHandler(complaints complaintService) *OfficerHandler {
	return &OfficerHandler{complaints: complaints}
}

// Complaints godoc
// @Summary Complaints assigned to an officer
// @Tags Officer
// @Produce json
// @Param officerId path string true "Officer ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /officer/complaints/{officerId} [get]
func (h *OfficerHandler) Complaints(c *gin.Context) {
	items, err := h.complaints.ListByAssignee(c.Request.Context(), c.Param("officerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Stats godoc
// @Summary Officer workload counts
// @Tags Officer
// @Produce json
// @Param officerId path string true "Officer ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /officer/stats/{officerId} [get]
func (h *OfficerHandler) Stats(c *gin.Context) {
	stats, err := h.complaints.OfficerStats(c.Request.Context(), c.Param("officerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// SetStatus godoc
// @Summary Change status of an assigned complaint
// @Tags Officer
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /officer/complaints/{id}/status [put]
func (h *OfficerHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.complaints)
}

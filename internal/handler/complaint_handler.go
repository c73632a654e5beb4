package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

// attachmentFields are the multipart keys accepted for uploaded files.
var attachmentFields = []string{"files", "attachments"}

type complaintService interface {
	Submit(ctx context.Context, req dto.SubmitComplaintRequest) (*models.Complaint, error)
	Get(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, query dto.ComplaintListQuery) ([]models.Complaint, *models.Pagination, error)
	ListByUser(ctx context.Context, userID string) ([]models.Complaint, error)
	ListByAssignee(ctx context.Context, officerID string) ([]models.Complaint, error)
	UpdateFields(ctx context.Context, actor models.Actor, id string, update models.ComplaintUpdate) (*models.Complaint, error)
	Assign(ctx context.Context, actor models.Actor, id, officerID string) (*models.Complaint, error)
	SetStatus(ctx context.Context, actor models.Actor, id, status string) (*models.Complaint, error)
	Resolve(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error)
	Withdraw(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error)
	ListEscalated(ctx context.Context) []models.Complaint
	AggregateStats(ctx context.Context) (models.ComplaintStats, bool, error)
	OfficerStats(ctx context.Context, officerID string) (models.OfficerStats, error)
}

type attachmentLinker interface {
	Links(complaint *models.Complaint) ([]dto.AttachmentLink, error)
}

// ComplaintHandler serves complaint submission and the submitter-facing endpoints.
type ComplaintHandler struct {
	service     complaintService
	attachments attachmentLinker
}

// NewComplaintHandler constructs a complaint handler.
func NewComplaintHandler(svc complaintService, attachments attachmentLinker) *ComplaintHandler {
	return &ComplaintHandler{service: svc, attachments: attachments}
}

// Submit godoc
// @Summary Submit complaint
// @Description Multipart form; anonymous submissions are allowed. A bearer token, when present, identifies the submitter.
// @Tags Complaints
// @Accept multipart/form-data
// @Produce json
// @Param subject formData string true "Subject"
// @Param description formData string false "Description"
// @Param submission_type formData string true "Public or Anonymous"
// @Param category formData string false "Category"
// @Param priority formData string false "Priority"
// @Param user_id formData string false "Submitting user id"
// @Param files formData file false "Attachments"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /complaints/submit [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	req := dto.SubmitComplaintRequest{
		Subject:        c.PostForm("subject"),
		Description:    c.PostForm("description"),
		SubmissionType: formValue(c, "submission_type", "submissionType"),
		Category:       c.PostForm("category"),
		Priority:       c.PostForm("priority"),
		UserID:         formValue(c, "user_id", "userId"),
		IP:             c.ClientIP(),
		UserAgent:      c.GetHeader("User-Agent"),
	}
	if claims := claimsFromContext(c); claims != nil {
		req.UserID = claims.UserID
	}

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form"))
		return
	}
	if form != nil {
		for _, field := range attachmentFields {
			for _, fh := range form.File[field] {
				req.Attachments = append(req.Attachments, uploadFromHeader(fh))
			}
		}
	}

	complaint, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.SubmitComplaintResponse{Message: "Complaint submitted successfully", ComplaintID: complaint.ID})
}

func formValue(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(c.PostForm(key)); v != "" {
			return v
		}
	}
	return ""
}

func uploadFromHeader(fh *multipart.FileHeader) dto.AttachmentUpload {
	return dto.AttachmentUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// Get godoc
// @Summary Get complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// ListByUser godoc
// @Summary List a user's complaints
// @Tags Complaints
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/user/{userId} [get]
func (h *ComplaintHandler) ListByUser(c *gin.Context) {
	items, err := h.service.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Edit complaint fields
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateComplaintRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id} [put]
func (h *ComplaintHandler) Update(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.UpdateComplaintRequest
	if !bindJSON(c, &req, "invalid complaint payload") {
		return
	}

	complaint, err := h.service.UpdateFields(c.Request.Context(), actor, c.Param("id"), req.ToUpdate())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Withdraw godoc
// @Summary Withdraw complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id}/withdraw [put]
func (h *ComplaintHandler) Withdraw(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	complaint, err := h.service.Withdraw(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Attachments godoc
// @Summary List complaint attachments
// @Description Each attachment comes with a signed, time-limited download URL
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /complaints/{id}/attachments [get]
func (h *ComplaintHandler) Attachments(c *gin.Context) {
	complaint, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	links, err := h.attachments.Links(complaint)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

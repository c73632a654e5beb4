package dto

import (
	"encoding/json"
	"io"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

// AttachmentUpload is one file received with a complaint submission.
type AttachmentUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// SubmitComplaintRequest captures the multipart submission form.
type SubmitComplaintRequest struct {
	Subject        string `form:"subject" validate:"required"`
	Description    string `form:"description"`
	SubmissionType string `form:"submission_type" validate:"required"`
	Category       string `form:"category"`
	Priority       string `form:"priority"`
	UserID         string `form:"user_id"`

	Attachments []AttachmentUpload `form:"-"`
	IP          string             `form:"-"`
	UserAgent   string             `form:"-"`
}

// SubmitComplaintResponse acknowledges a stored complaint.
type SubmitComplaintResponse struct {
	Message     string `json:"message"`
	ComplaintID string `json:"complaint_id"`
}

// UpdateComplaintRequest is a partial edit; omitted fields are left unchanged.
type UpdateComplaintRequest struct {
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
}

// ToUpdate converts the payload to the repository form.
func (r UpdateComplaintRequest) ToUpdate() models.ComplaintUpdate {
	return models.ComplaintUpdate{
		Subject:     r.Subject,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
	}
}

// AssignComplaintRequest names the officer taking the complaint.
type AssignComplaintRequest struct {
	OfficerID string `json:"officer_id" validate:"required"`
}

// UnmarshalJSON also accepts officerId.
func (r *AssignComplaintRequest) UnmarshalJSON(data []byte) error {
	type plain AssignComplaintRequest
	aux := struct {
		*plain
		OfficerIDAlt string `json:"officerId"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.OfficerID == "" {
		r.OfficerID = aux.OfficerIDAlt
	}
	return nil
}

// UpdateStatusRequest carries the requested status label.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ComplaintListQuery binds GET /admin/complaints query parameters.
type ComplaintListQuery struct {
	Status     string `form:"status"`
	Category   string `form:"category"`
	AssignedTo string `form:"assigned_to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// AttachmentLink is a stored attachment with a time-limited download URL.
type AttachmentLink struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

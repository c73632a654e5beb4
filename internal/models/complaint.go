package models

import (
	"errors"
	"strings"
	"time"
)

// ComplaintStatus is the lifecycle state of a complaint. Stored values keep the legacy labels.
type ComplaintStatus string

const (
	StatusNew        ComplaintStatus = "New"
	StatusInProgress ComplaintStatus = "IN PROGRESS"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusWithdrawn  ComplaintStatus = "WITHDRAWN"
)

// ErrUnknownStatus is returned by ParseComplaintStatus for unsupported labels.
var ErrUnknownStatus = errors.New("unsupported status")

var statusAliases = map[string]ComplaintStatus{
	"NEW":                 StatusNew,
	"COMPLAINT SUBMITTED": StatusNew,
	"IN PROGRESS":         StatusInProgress,
	"INPROGRESS":          StatusInProgress,
	"RESOLVED":            StatusResolved,
	"WITHDRAWN":           StatusWithdrawn,
}

// ParseComplaintStatus maps client labels such as "RESOLVED", "in_progress" or "New" onto a canonical status.
func ParseComplaintStatus(raw string) (ComplaintStatus, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	if status, ok := statusAliases[key]; ok {
		return status, nil
	}
	return "", ErrUnknownStatus
}

// Known reports whether s is one of the canonical statuses.
func (s ComplaintStatus) Known() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusWithdrawn:
		return true
	}
	return false
}

var allowedTransitions = map[ComplaintStatus][]ComplaintStatus{
	StatusNew:        {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {StatusInProgress},
}

// CanTransition reports whether a complaint may move from one status to another.
// Any status may move to WITHDRAWN; a withdrawn complaint is terminal. Same-state moves are allowed.
func CanTransition(from, to ComplaintStatus) bool {
	if from == to {
		return true
	}
	if from == StatusWithdrawn {
		return false
	}
	if to == StatusWithdrawn {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Submission types understood by the attribution rule.
const (
	SubmissionPublic    = "Public"
	SubmissionAnonymous = "Anonymous"
)

// NormalizeSubmissionType canonicalises the known submission types and keeps anything else verbatim.
func NormalizeSubmissionType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "public":
		return SubmissionPublic
	case "anonymous":
		return SubmissionAnonymous
	}
	return trimmed
}

const (
	DefaultCategory = "General"
	DefaultPriority = "Medium"
)

// Complaint is a grievance filed by a citizen or anonymously.
type Complaint struct {
	ID             string          `db:"id" json:"id"`
	Subject        string          `db:"subject" json:"subject"`
	Description    string          `db:"description" json:"description"`
	SubmissionType string          `db:"submission_type" json:"submission_type"`
	AttachmentPath *string         `db:"attachment_path" json:"attachment_path,omitempty"`
	Status         ComplaintStatus `db:"status" json:"status"`
	Priority       string          `db:"priority" json:"priority"`
	Category       string          `db:"category" json:"category"`
	UserID         *string         `db:"user_id" json:"user_id,omitempty"`
	AssignedToID   *string         `db:"assigned_to_id" json:"assigned_to_id,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`

	SubmitterUsername *string `db:"submitter_username" json:"submitted_by,omitempty"`
	AssigneeUsername  *string `db:"assignee_username" json:"assigned_to,omitempty"`
}

// Attachments splits the stored comma-joined attachment list.
func (c *Complaint) Attachments() []string {
	if c.AttachmentPath == nil {
		return nil
	}
	parts := strings.Split(*c.AttachmentPath, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// HasAttachment reports whether name is one of the stored attachments.
func (c *Complaint) HasAttachment(name string) bool {
	for _, stored := range c.Attachments() {
		if stored == name {
			return true
		}
	}
	return false
}

// JoinAttachments renders names as the stored comma-joined form; nil for no attachments.
func JoinAttachments(names []string) *string {
	if len(names) == 0 {
		return nil
	}
	joined := strings.Join(names, ",")
	return &joined
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	Status       *ComplaintStatus
	Category     string
	AssignedToID string
	Page         int
	PageSize     int
}

// ComplaintUpdate carries the editable fields; nil means unchanged.
type ComplaintUpdate struct {
	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// Empty reports whether no field is set.
func (u ComplaintUpdate) Empty() bool {
	return u.Subject == nil && u.Description == nil && u.Category == nil && u.Priority == nil
}

// ComplaintStats counts complaints by status. Legacy or withdrawn rows count only towards Total.
type ComplaintStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Assigned int `json:"assigned"`
	Resolved int `json:"resolved"`
}

// StatusCount is one row of a GROUP BY status aggregate.
type StatusCount struct {
	Status ComplaintStatus `db:"status"`
	Count  int             `db:"count"`
}

// OfficerStats counts an officer's complaints.
type OfficerStats struct {
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

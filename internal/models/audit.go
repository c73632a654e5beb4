package models

import (
	"database/sql/driver"
	"time"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin            = "LOGIN"
	AuditActionRegister         = "REGISTER"
	AuditActionPasswordChange   = "PASSWORD_CHANGE"
	AuditActionComplaintSubmit  = "COMPLAINT_SUBMIT"
	AuditActionComplaintUpdate  = "COMPLAINT_UPDATE"
	AuditActionComplaintAssign  = "COMPLAINT_ASSIGN"
	AuditActionStatusChange     = "COMPLAINT_STATUS_CHANGE"
	AuditActionReportGenerate   = "REPORT_GENERATE"
	AuditActionMessageSend      = "MESSAGE_SEND"
	AuditActionAttachmentDelete = "ATTACHMENT_ORPHAN_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *string     `db:"user_id" json:"user_id,omitempty"`
	Action     string      `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  JSONPayload `db:"old_values" json:"old_values,omitempty"`
	NewValues  JSONPayload `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string      `db:"ip_address" json:"ip_address"`
	UserAgent  string      `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// JSONPayload is raw JSON stored in a jsonb column; empty payloads are written as NULL.
type JSONPayload []byte

// Value implements driver.Valuer.
func (p JSONPayload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

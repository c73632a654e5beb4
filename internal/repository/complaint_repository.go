package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

const complaintSelect = `SELECT c.id, c.subject, c.description, c.submission_type, c.attachment_path, c.status, c.priority, c.category,
       c.user_id, c.assigned_to_id, c.created_at, c.updated_at,
       su.username AS submitter_username, au.username AS assignee_username
FROM complaints c
LEFT JOIN users su ON su.id = c.user_id
LEFT JOIN users au ON au.id = c.assigned_to_id`

// ComplaintRepository persists complaints.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a complaint row.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now().UTC()
	}
	if complaint.UpdatedAt.IsZero() {
		complaint.UpdatedAt = complaint.CreatedAt
	}
	if complaint.Status == "" {
		complaint.Status = models.StatusNew
	}
	const query = `INSERT INTO complaints
	(id, subject, description, submission_type, attachment_path, status, priority, category, user_id, assigned_to_id, created_at, updated_at)
	VALUES (:id, :subject, :description, :submission_type, :attachment_path, :status, :priority, :category, :user_id, :assigned_to_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		if known := classify(err); known != nil {
			return fmt.Errorf("create complaint: %w", known)
		}
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID fetches a complaint with submitter and assignee names.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	const query = complaintSelect + ` WHERE c.id = $1`
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return &complaint, nil
}

// List returns complaints matching the filter, newest first, with the total count.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)))
	}
	if filter.AssignedToID != "" {
		args = append(args, filter.AssignedToID)
		conditions = append(conditions, fmt.Sprintf("c.assigned_to_id = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("%s%s ORDER BY c.created_at DESC, c.id LIMIT %d OFFSET %d", complaintSelect, where, pageSize, (page-1)*pageSize)

	complaints := make([]models.Complaint, 0)
	if err := r.db.SelectContext(ctx, &complaints, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM complaints c"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}
	return complaints, total, nil
}

// ListByUser returns the complaints filed by userID, newest first.
func (r *ComplaintRepository) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	const query = complaintSelect + ` WHERE c.user_id = $1 ORDER BY c.created_at DESC`
	complaints := make([]models.Complaint, 0)
	if err := r.db.SelectContext(ctx, &complaints, query, userID); err != nil {
		return nil, fmt.Errorf("list complaints by user: %w", err)
	}
	return complaints, nil
}

// ListByAssignee returns the complaints assigned to officerID, newest first.
func (r *ComplaintRepository) ListByAssignee(ctx context.Context, officerID string) ([]models.Complaint, error) {
	const query = complaintSelect + ` WHERE c.assigned_to_id = $1 ORDER BY c.created_at DESC`
	complaints := make([]models.Complaint, 0)
	if err := r.db.SelectContext(ctx, &complaints, query, officerID); err != nil {
		return nil, fmt.Errorf("list complaints by assignee: %w", err)
	}
	return complaints, nil
}

// ListOlderThanWithStatus returns complaints in status created strictly before cutoff, oldest first.
func (r *ComplaintRepository) ListOlderThanWithStatus(ctx context.Context, status models.ComplaintStatus, cutoff time.Time) ([]models.Complaint, error) {
	const query = complaintSelect + ` WHERE c.status = $1 AND c.created_at < $2 ORDER BY c.created_at ASC`
	complaints := make([]models.Complaint, 0)
	if err := r.db.SelectContext(ctx, &complaints, query, status, cutoff); err != nil {
		return nil, fmt.Errorf("list escalated complaints: %w", err)
	}
	return complaints, nil
}

// ListCreatedBetween returns complaints with from <= created_at < to, optionally limited to categories,
// in creation order.
func (r *ComplaintRepository) ListCreatedBetween(ctx context.Context, from, to time.Time, categories []string) ([]models.Complaint, error) {
	query := complaintSelect + ` WHERE c.created_at >= $1 AND c.created_at < $2`
	args := []interface{}{from, to}
	if len(categories) > 0 {
		query += ` AND c.category = ANY($3)`
		args = append(args, pq.Array(categories))
	}
	query += ` ORDER BY c.created_at, c.id`

	complaints := make([]models.Complaint, 0)
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("list complaints for report: %w", err)
	}
	return complaints, nil
}

// CountByStatus groups every complaint by its stored status.
func (r *ComplaintRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM complaints GROUP BY status`
	counts := make([]models.StatusCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count complaints by status: %w", err)
	}
	return counts, nil
}

// UpdateFields applies the non-nil fields of update.
func (r *ComplaintRepository) UpdateFields(ctx context.Context, id string, update models.ComplaintUpdate, updatedAt time.Time) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("subject", update.Subject)
	add("description", update.Description)
	add("category", update.Category)
	add("priority", update.Priority)

	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)
	query := fmt.Sprintf("UPDATE complaints SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus moves the complaint from one status to another. ErrStale is returned when the stored
// status no longer equals from.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, from, to models.ComplaintStatus, updatedAt time.Time) error {
	const query = `UPDATE complaints SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, updatedAt)
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	if affected == 0 {
		return ErrStale
	}
	return nil
}

// Assign sets the assignee and forces the status to IN PROGRESS. It returns the previous assignee.
func (r *ComplaintRepository) Assign(ctx context.Context, id, officerID string, updatedAt time.Time) (prevAssignee *string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assign transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT assigned_to_id FROM complaints WHERE id = $1 FOR UPDATE`
	var current sql.NullString
	if err = tx.GetContext(ctx, &current, lockQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock complaint: %w", err)
	}
	if current.Valid {
		prev := current.String
		prevAssignee = &prev
	}

	const updateQuery = `UPDATE complaints SET assigned_to_id = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, id, officerID, models.StatusInProgress, updatedAt); err != nil {
		if known := classify(err); known != nil {
			return nil, fmt.Errorf("assign complaint: %w", known)
		}
		return nil, fmt.Errorf("assign complaint: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assign: %w", err)
	}
	return prevAssignee, nil
}

// AttachmentReferenced reports whether any complaint lists name among its attachments.
func (r *ComplaintRepository) AttachmentReferenced(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM complaints WHERE attachment_path IS NOT NULL AND $1 = ANY(string_to_array(attachment_path, ',')))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf("check attachment reference: %w", err)
	}
	return exists, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

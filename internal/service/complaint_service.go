package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/internal/repository"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

const statsCacheKey = "stats:aggregate"

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	ListByUser(ctx context.Context, userID string) ([]models.Complaint, error)
	ListByAssignee(ctx context.Context, officerID string) ([]models.Complaint, error)
	ListOlderThanWithStatus(ctx context.Context, status models.ComplaintStatus, cutoff time.Time) ([]models.Complaint, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	UpdateFields(ctx context.Context, id string, update models.ComplaintUpdate, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, from, to models.ComplaintStatus, updatedAt time.Time) error
	Assign(ctx context.Context, id, officerID string, updatedAt time.Time) (*string, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type attachmentStager interface {
	Stage(ctx context.Context, uploads []dto.AttachmentUpload) ([]string, error)
	Promote(ctx context.Context, names []string)
	Discard(names []string)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// ComplaintConfig tunes complaint workflows.
type ComplaintConfig struct {
	EscalationThreshold time.Duration
	StatsTTL            time.Duration
}

// ComplaintService implements submission, triage and the status lifecycle of complaints.
type ComplaintService struct {
	repo        complaintRepository
	users       userLookup
	attachments attachmentStager
	cache       statsCache
	audit       auditLogger
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ComplaintConfig
	now         func() time.Time
}

// NewComplaintService constructs a ComplaintService. cache, audit and metrics may be nil.
func NewComplaintService(repo complaintRepository, users userLookup, attachments attachmentStager, cache statsCache, audit auditLogger, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ComplaintConfig) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.EscalationThreshold <= 0 {
		cfg.EscalationThreshold = 48 * time.Hour
	}
	return &ComplaintService{
		repo:        repo,
		users:       users,
		attachments: attachments,
		cache:       cache,
		audit:       audit,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a new complaint. Attachments are staged before the insert and promoted after it.
func (s *ComplaintService) Submit(ctx context.Context, req dto.SubmitComplaintRequest) (*models.Complaint, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.SubmissionType = models.NormalizeSubmissionType(req.SubmissionType)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid complaint payload")
	}

	complaint := &models.Complaint{
		Subject:        req.Subject,
		Description:    req.Description,
		SubmissionType: req.SubmissionType,
		Status:         models.StatusNew,
		Category:       valueOrDefault(req.Category, models.DefaultCategory),
		Priority:       valueOrDefault(req.Priority, models.DefaultPriority),
	}

	submitter, err := s.resolveSubmitter(ctx, req.SubmissionType, req.UserID)
	if err != nil {
		return nil, err
	}
	complaint.UserID = submitter

	var staged []string
	if s.attachments != nil && len(req.Attachments) > 0 {
		staged, err = s.attachments.Stage(ctx, req.Attachments)
		if err != nil {
			return nil, err
		}
		complaint.AttachmentPath = models.JoinAttachments(staged)
	}

	complaint.CreatedAt = s.now()
	complaint.UpdatedAt = complaint.CreatedAt
	if err := s.repo.Create(ctx, complaint); err != nil {
		if s.attachments != nil {
			s.attachments.Discard(staged)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit complaint")
	}
	if s.attachments != nil && len(staged) > 0 {
		s.attachments.Promote(ctx, staged)
	}

	s.invalidateStats(ctx)
	s.metrics.ComplaintSubmitted(submissionLabel(complaint.SubmissionType))
	s.record(ctx, &models.AuditLog{
		UserID:     complaint.UserID,
		Action:     models.AuditActionComplaintSubmit,
		Resource:   "complaint",
		ResourceID: &complaint.ID,
		NewValues:  mustJSON(map[string]interface{}{"submission_type": complaint.SubmissionType, "attachments": len(staged)}),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})
	return complaint, nil
}

// resolveSubmitter attaches the user only for Public submissions with an existing user id.
func (s *ComplaintService) resolveSubmitter(ctx context.Context, submissionType, userID string) (*string, error) {
	userID = strings.TrimSpace(userID)
	if submissionType != models.SubmissionPublic || userID == "" || s.users == nil {
		return nil, nil
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve submitter")
	}
	return &user.ID, nil
}

// Get returns a complaint by id.
func (s *ComplaintService) Get(ctx context.Context, id string) (*models.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	complaint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return complaint, nil
}

// List returns a filtered page of complaints for the admin dashboard.
func (s *ComplaintService) List(ctx context.Context, query dto.ComplaintListQuery) ([]models.Complaint, *models.Pagination, error) {
	filter := models.ComplaintFilter{
		Category: strings.TrimSpace(query.Category),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, err := models.ParseComplaintStatus(raw)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unsupported status")
		}
		filter.Status = &status
	}
	if assignee := strings.TrimSpace(query.AssignedTo); assignee != "" {
		if _, err := uuid.Parse(assignee); err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "assigned_to must be a user id")
		}
		filter.AssignedToID = assignee
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListByUser returns the complaints filed by userID, newest first.
func (s *ComplaintService) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []models.Complaint{}, nil
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return items, nil
}

// ListByAssignee returns the complaints assigned to officerID.
func (s *ComplaintService) ListByAssignee(ctx context.Context, officerID string) ([]models.Complaint, error) {
	if _, err := uuid.Parse(officerID); err != nil {
		return []models.Complaint{}, nil
	}
	items, err := s.repo.ListByAssignee(ctx, officerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return items, nil
}

// UpdateFields applies a partial edit and returns the stored complaint.
func (s *ComplaintService) UpdateFields(ctx context.Context, actor models.Actor, id string, update models.ComplaintUpdate) (*models.Complaint, error) {
	if update.Subject != nil {
		trimmed := strings.TrimSpace(*update.Subject)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject cannot be empty")
		}
		update.Subject = &trimmed
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}

	if err := s.repo.UpdateFields(ctx, id, update, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint")
	}

	s.invalidateStats(ctx)
	s.record(ctx, &models.AuditLog{
		UserID:     actorID(actor),
		Action:     models.AuditActionComplaintUpdate,
		Resource:   "complaint",
		ResourceID: &id,
		NewValues:  mustJSON(update),
	})
	return s.Get(ctx, id)
}

// Assign hands the complaint to an officer and forces it IN PROGRESS regardless of its prior status.
func (s *ComplaintService) Assign(ctx context.Context, actor models.Actor, id, officerID string) (*models.Complaint, error) {
	invalid := appErrors.Clone(appErrors.ErrValidation, "Invalid complaint or officer ID")
	if _, err := uuid.Parse(id); err != nil {
		return nil, invalid
	}
	if _, err := uuid.Parse(officerID); err != nil {
		return nil, invalid
	}

	officer, err := s.users.FindByID(ctx, officerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load officer")
	}
	if officer.Role != models.RoleOfficer {
		return nil, invalid
	}

	prev, err := s.repo.Assign(ctx, id, officerID, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrReferenceMissing) {
			return nil, invalid
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign complaint")
	}

	s.invalidateStats(ctx)
	old := map[string]interface{}{"assigned_to_id": prev}
	s.record(ctx, &models.AuditLog{
		UserID:     actorID(actor),
		Action:     models.AuditActionComplaintAssign,
		Resource:   "complaint",
		ResourceID: &id,
		OldValues:  mustJSON(old),
		NewValues:  mustJSON(map[string]interface{}{"assigned_to_id": officerID, "status": models.StatusInProgress}),
	})
	return s.Get(ctx, id)
}

// SetStatus moves the complaint to the requested status if the transition table allows it.
// Officers may only change complaints assigned to them.
func (s *ComplaintService) SetStatus(ctx context.Context, actor models.Actor, id, rawStatus string) (*models.Complaint, error) {
	to, err := models.ParseComplaintStatus(rawStatus)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported status")
	}
	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleOfficer && (complaint.AssignedToID == nil || *complaint.AssignedToID != actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "complaint is not assigned to you")
	}
	return s.transition(ctx, actor, complaint, to)
}

// Resolve marks the complaint Resolved.
func (s *ComplaintService) Resolve(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	return s.SetStatus(ctx, actor, id, string(models.StatusResolved))
}

// Withdraw retracts a complaint. Only its submitter or an admin may do so.
func (s *ComplaintService) Withdraw(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && (complaint.UserID == nil || *complaint.UserID != actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the submitter can withdraw this complaint")
	}
	return s.transition(ctx, actor, complaint, models.StatusWithdrawn)
}

func (s *ComplaintService) transition(ctx context.Context, actor models.Actor, complaint *models.Complaint, to models.ComplaintStatus) (*models.Complaint, error) {
	stored := complaint.Status
	from, err := models.ParseComplaintStatus(string(stored))
	if err != nil {
		from = stored
	}
	if !models.CanTransition(from, to) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot change status from %s to %s", stored, to))
	}
	if stored == to {
		return complaint, nil
	}

	if err := s.repo.UpdateStatus(ctx, complaint.ID, stored, to, s.now()); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "complaint was modified concurrently, retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.invalidateStats(ctx)
	s.record(ctx, &models.AuditLog{
		UserID:     actorID(actor),
		Action:     models.AuditActionStatusChange,
		Resource:   "complaint",
		ResourceID: &complaint.ID,
		OldValues:  mustJSON(map[string]interface{}{"status": stored}),
		NewValues:  mustJSON(map[string]interface{}{"status": to}),
	})
	return s.Get(ctx, complaint.ID)
}

// ListEscalated returns IN PROGRESS complaints older than the threshold, oldest first.
// Store failures are logged and yield an empty list.
func (s *ComplaintService) ListEscalated(ctx context.Context) []models.Complaint {
	cutoff := s.now().Add(-s.cfg.EscalationThreshold)
	start := time.Now()
	items, err := s.repo.ListOlderThanWithStatus(ctx, models.StatusInProgress, cutoff)
	s.metrics.ObserveDBQuery("complaints_escalated", time.Since(start))
	if err != nil {
		s.logger.Warn("escalation listing failed", zap.Error(err))
		return []models.Complaint{}
	}
	s.metrics.SetEscalated(len(items))
	return items
}

// AggregateStats counts complaints by status. The second return value reports a cache hit.
func (s *ComplaintService) AggregateStats(ctx context.Context) (models.ComplaintStats, bool, error) {
	var stats models.ComplaintStats
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, statsCacheKey, &stats); err == nil && hit {
			return stats, true, nil
		}
	}

	start := time.Now()
	counts, err := s.repo.CountByStatus(ctx)
	s.metrics.ObserveDBQuery("complaints_count_by_status", time.Since(start))
	if err != nil {
		return models.ComplaintStats{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statistics")
	}
	stats = tallyStatuses(counts)

	if s.cache != nil {
		_ = s.cache.Set(ctx, statsCacheKey, stats, s.cfg.StatsTTL)
	}
	return stats, false, nil
}

// tallyStatuses matches stored values exactly; anything else counts only towards Total.
func tallyStatuses(counts []models.StatusCount) models.ComplaintStats {
	var stats models.ComplaintStats
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case models.StatusNew:
			stats.New += c.Count
		case models.StatusInProgress:
			stats.Assigned += c.Count
		case models.StatusResolved:
			stats.Resolved += c.Count
		}
	}
	return stats
}

// OfficerStats counts the complaints assigned to officerID.
func (s *ComplaintService) OfficerStats(ctx context.Context, officerID string) (models.OfficerStats, error) {
	items, err := s.ListByAssignee(ctx, officerID)
	if err != nil {
		return models.OfficerStats{}, err
	}
	stats := models.OfficerStats{Assigned: len(items)}
	for _, c := range items {
		switch c.Status {
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusResolved:
			stats.Resolved++
		}
	}
	return stats, nil
}

func (s *ComplaintService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, statsCacheKey)
}

func (s *ComplaintService) record(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

func submissionLabel(submissionType string) string {
	switch submissionType {
	case models.SubmissionPublic, models.SubmissionAnonymous:
		return submissionType
	}
	return "other"
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func actorID(actor models.Actor) *string {
	if actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}

func mustJSON(v interface{}) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return payload
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/internal/repository"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByType(ctx context.Context, complaintID string, typ models.MessageType) ([]models.Message, error)
	ListVisibleTo(ctx context.Context, complaintID, userID string) ([]models.Message, error)
}

type complaintLookup interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
}

// MessageService manages the message threads attached to complaints.
type MessageService struct {
	repo       messageRepository
	complaints complaintLookup
	users      userLookup
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageRepository, complaints complaintLookup, users userLookup, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{
		repo:       repo,
		complaints: complaints,
		users:      users,
		audit:      audit,
		validator:  validate,
		logger:     logger,
	}
}

// ListPublic returns the complaint's public messages, oldest first.
func (s *MessageService) ListPublic(ctx context.Context, complaintID string) ([]models.Message, error) {
	return s.listByType(ctx, complaintID, models.MessagePublic)
}

// ListPrivate returns every private message of the complaint. Officers and admins only.
func (s *MessageService) ListPrivate(ctx context.Context, actor models.Actor, complaintID string) ([]models.Message, error) {
	if actor.Role != models.RoleOfficer && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "private messages are restricted to staff")
	}
	return s.listByType(ctx, complaintID, models.MessagePrivate)
}

func (s *MessageService) listByType(ctx context.Context, complaintID string, typ models.MessageType) ([]models.Message, error) {
	if _, err := uuid.Parse(complaintID); err != nil {
		return []models.Message{}, nil
	}
	messages, err := s.repo.ListByType(ctx, complaintID, typ)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// ListForUser returns what userID may read on the complaint: every public message plus the private
// messages userID sent or received. Callers may only read their own view unless they are staff.
func (s *MessageService) ListForUser(ctx context.Context, actor models.Actor, complaintID, userID string) ([]models.Message, error) {
	if actor.UserID != userID && actor.Role != models.RoleOfficer && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot read another user's messages")
	}
	if _, err := uuid.Parse(complaintID); err != nil {
		return []models.Message{}, nil
	}
	if _, err := uuid.Parse(userID); err != nil {
		return []models.Message{}, nil
	}
	messages, err := s.repo.ListVisibleTo(ctx, complaintID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Send stores a message on a complaint. The sender is the caller unless an admin names another user.
func (s *MessageService) Send(ctx context.Context, actor models.Actor, req dto.SendMessageRequest) (*models.Message, error) {
	req.ComplaintID = strings.TrimSpace(req.ComplaintID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid message payload")
	}
	typ, err := models.ParseMessageType(req.MessageType)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	senderID := actor.UserID
	if requested := strings.TrimSpace(req.SenderID); requested != "" && requested != actor.UserID {
		if actor.Role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot send messages on behalf of another user")
		}
		senderID = requested
	}

	var recipientID *string
	if req.RecipientID != nil {
		if trimmed := strings.TrimSpace(*req.RecipientID); trimmed != "" {
			recipientID = &trimmed
		}
	}

	msg, err := models.NewMessage(typ, req.ComplaintID, senderID, recipientID, req.Content)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	invalid := appErrors.Clone(appErrors.ErrValidation, "Invalid complaint, sender or recipient")
	if err := s.resolveParticipants(ctx, msg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrReferenceMissing) {
			return nil, invalid
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}

	s.record(ctx, &models.AuditLog{
		UserID:     actorID(actor),
		Action:     models.AuditActionMessageSend,
		Resource:   "message",
		ResourceID: &msg.ID,
		NewValues:  mustJSON(map[string]interface{}{"complaint_id": msg.ComplaintID, "message_type": msg.Type}),
	})
	return msg, nil
}

// resolveParticipants returns sql.ErrNoRows when the complaint, sender or recipient does not exist,
// and fills in the display names.
func (s *MessageService) resolveParticipants(ctx context.Context, msg *models.Message) error {
	ids := []string{msg.ComplaintID, msg.SenderID}
	if msg.RecipientID != nil {
		ids = append(ids, *msg.RecipientID)
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return sql.ErrNoRows
		}
	}

	if _, err := s.complaints.FindByID(ctx, msg.ComplaintID); err != nil {
		return err
	}
	sender, err := s.users.FindByID(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	msg.SenderUsername = &sender.Username
	if msg.RecipientID != nil {
		recipient, err := s.users.FindByID(ctx, *msg.RecipientID)
		if err != nil {
			return err
		}
		msg.RecipientUsername = &recipient.Username
	}
	return nil
}

func (s *MessageService) record(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/internal/repository"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type stubMessageRepo struct {
	messages  []models.Message
	createErr error
}

func (r *stubMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	msg.ID = uuid.NewString()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *stubMessageRepo) ListByType(ctx context.Context, complaintID string, typ models.MessageType) ([]models.Message, error) {
	out := make([]models.Message, 0)
	for _, m := range r.messages {
		if m.ComplaintID == complaintID && m.Type == typ {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) ListVisibleTo(ctx context.Context, complaintID, userID string) ([]models.Message, error) {
	out := make([]models.Message, 0)
	for _, m := range r.messages {
		if m.ComplaintID != complaintID {
			continue
		}
		if m.Type == models.MessagePublic || m.SenderID == userID || (m.RecipientID != nil && *m.RecipientID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

type messageFixture struct {
	svc       *MessageService
	repo      *stubMessageRepo
	audit     *mockAudit
	complaint *models.Complaint
}

func newMessageFixture() *messageFixture {
	complaint := seeded(models.StatusInProgress, time.Now())
	f := &messageFixture{repo: &stubMessageRepo{}, audit: &mockAudit{}, complaint: complaint}
	f.svc = NewMessageService(f.repo, newStubComplaintRepo(complaint), &stubUserRepo{users: testUsers()}, f.audit, nil, zap.NewNop())
	return f
}

var (
	asCitizen = models.Actor{UserID: testCitizenID, Role: models.RoleCitizen}
	asOfficer = models.Actor{UserID: testOfficerID, Role: models.RoleOfficer}
	asAdmin   = models.Actor{UserID: testAdminID, Role: models.RoleAdmin}
)

func TestSendPublicMessage(t *testing.T) {
	f := newMessageFixture()

	msg, err := f.svc.Send(context.Background(), asCitizen, dto.SendMessageRequest{
		ComplaintID: f.complaint.ID,
		Content:     "any update?",
		MessageType: "public",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessagePublic, msg.Type)
	assert.Equal(t, testCitizenID, msg.SenderID)
	assert.Nil(t, msg.RecipientID)
	require.NotNil(t, msg.SenderUsername)
	assert.Equal(t, "citizen1", *msg.SenderUsername)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionMessageSend, f.audit.logs[0].Action)
}

func TestSendRecipientRules(t *testing.T) {
	f := newMessageFixture()
	recipient := testCitizenID

	_, err := f.svc.Send(context.Background(), asOfficer, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "hi", MessageType: "PRIVATE"})
	assert.Equal(t, models.ErrRecipientRequired.Error(), appErrors.FromError(err).Message)

	_, err = f.svc.Send(context.Background(), asOfficer, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "hi", MessageType: "PUBLIC", RecipientID: &recipient})
	assert.Equal(t, models.ErrRecipientNotAllowed.Error(), appErrors.FromError(err).Message)

	_, err = f.svc.Send(context.Background(), asOfficer, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "hi", MessageType: "internal"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	msg, err := f.svc.Send(context.Background(), asOfficer, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "hi", MessageType: "private", RecipientID: &recipient})
	require.NoError(t, err)
	require.NotNil(t, msg.RecipientUsername)
	assert.Equal(t, "citizen1", *msg.RecipientUsername)
	assert.Len(t, f.repo.messages, 1)
}

func TestSendUnresolvedParticipantsWritesNothing(t *testing.T) {
	f := newMessageFixture()
	missing := testOtherID

	cases := map[string]dto.SendMessageRequest{
		"unknown complaint": {ComplaintID: uuid.NewString(), Content: "hi", MessageType: "PUBLIC"},
		"bad complaint id":  {ComplaintID: "12", Content: "hi", MessageType: "PUBLIC"},
		"unknown recipient": {ComplaintID: f.complaint.ID, Content: "hi", MessageType: "PRIVATE", RecipientID: &missing},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Send(context.Background(), asOfficer, req)
			assert.Equal(t, "Invalid complaint, sender or recipient", appErrors.FromError(err).Message)
		})
	}

	_, err := f.svc.Send(context.Background(), asAdmin, dto.SendMessageRequest{ComplaintID: f.complaint.ID, SenderID: testOtherID, Content: "hi", MessageType: "PUBLIC"})
	assert.Equal(t, "Invalid complaint, sender or recipient", appErrors.FromError(err).Message)
	assert.Empty(t, f.repo.messages)
	assert.Empty(t, f.audit.logs)
}

func TestSendMapsForeignKeyViolation(t *testing.T) {
	f := newMessageFixture()
	f.repo.createErr = errors.Join(errors.New("create message"), repository.ErrReferenceMissing)

	_, err := f.svc.Send(context.Background(), asCitizen, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "hi", MessageType: "PUBLIC"})
	assert.Equal(t, "Invalid complaint, sender or recipient", appErrors.FromError(err).Message)
}

func TestSendOnBehalfRequiresAdmin(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Send(context.Background(), asCitizen, dto.SendMessageRequest{ComplaintID: f.complaint.ID, SenderID: testOfficerID, Content: "hi", MessageType: "PUBLIC"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	msg, err := f.svc.Send(context.Background(), asAdmin, dto.SendMessageRequest{ComplaintID: f.complaint.ID, SenderID: testOfficerID, Content: "hi", MessageType: "PUBLIC"})
	require.NoError(t, err)
	assert.Equal(t, testOfficerID, msg.SenderID)
}

func TestSendRequiresContent(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Send(context.Background(), asCitizen, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "   ", MessageType: "PUBLIC"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestMessageVisibility(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	toCitizen := testCitizenID
	toAdmin := testAdminID

	_, err := f.svc.Send(ctx, asOfficer, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "public note", MessageType: "PUBLIC"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, asOfficer, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "for citizen", MessageType: "PRIVATE", RecipientID: &toCitizen})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, asOfficer, dto.SendMessageRequest{ComplaintID: f.complaint.ID, Content: "for admin", MessageType: "PRIVATE", RecipientID: &toAdmin})
	require.NoError(t, err)

	public, err := f.svc.ListPublic(ctx, f.complaint.ID)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	_, err = f.svc.ListPrivate(ctx, asCitizen, f.complaint.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	private, err := f.svc.ListPrivate(ctx, asOfficer, f.complaint.ID)
	require.NoError(t, err)
	assert.Len(t, private, 2)

	visible, err := f.svc.ListForUser(ctx, asCitizen, f.complaint.ID, testCitizenID)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	for _, m := range visible {
		assert.NotEqual(t, "for admin", m.Content)
	}

	senderView, err := f.svc.ListForUser(ctx, asAdmin, f.complaint.ID, testOfficerID)
	require.NoError(t, err)
	assert.Len(t, senderView, 3)

	_, err = f.svc.ListForUser(ctx, asCitizen, f.complaint.ID, testAdminID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

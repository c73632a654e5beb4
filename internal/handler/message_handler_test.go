package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type fakeMessageSrv struct {
	err       error
	lastActor models.Actor
	lastReq   dto.SendMessageRequest
	lastIDs   []string
}

func (f *fakeMessageSrv) ListPublic(_ context.Context, complaintID string) ([]models.Message, error) {
	f.lastIDs = []string{complaintID}
	return []models.Message{{ID: "m-1", ComplaintID: complaintID, Type: models.MessagePublic}}, f.err
}

func (f *fakeMessageSrv) ListPrivate(_ context.Context, actor models.Actor, complaintID string) ([]models.Message, error) {
	f.lastActor, f.lastIDs = actor, []string{complaintID}
	return []models.Message{}, f.err
}

func (f *fakeMessageSrv) ListForUser(_ context.Context, actor models.Actor, complaintID, userID string) ([]models.Message, error) {
	f.lastActor, f.lastIDs = actor, []string{complaintID, userID}
	return []models.Message{}, f.err
}

func (f *fakeMessageSrv) Send(_ context.Context, actor models.Actor, req dto.SendMessageRequest) (*models.Message, error) {
	f.lastActor, f.lastReq = actor, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{ID: "m-2", ComplaintID: req.ComplaintID, SenderID: actor.UserID, Content: req.Content}, nil
}

func TestMessageHandlerSendCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeMessageSrv{}
	handler := NewMessageHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/messages/send",
		strings.NewReader(`{"complaint_id":"c-1","content":"hello","message_type":"public"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c, "u-1", models.RoleCitizen)

	handler.Send(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", srv.lastActor.UserID)
	assert.Equal(t, "hello", srv.lastReq.Content)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "m-2", data["id"])
}

func TestMessageHandlerSendAcceptsCamelCaseBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeMessageSrv{}
	handler := NewMessageHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/messages/send",
		strings.NewReader(`{"complaintId":"c-1","recipientId":"u-9","content":"hi","messageType":"private"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c, "u-1", models.RoleOfficer)

	handler.Send(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "c-1", srv.lastReq.ComplaintID)
	assert.Equal(t, "private", srv.lastReq.MessageType)
	require.NotNil(t, srv.lastReq.RecipientID)
	assert.Equal(t, "u-9", *srv.lastReq.RecipientID)
}

func TestMessageHandlerSendInvalidParticipants(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeMessageSrv{err: appErrors.Clone(appErrors.ErrValidation, "Invalid complaint, sender or recipient")}
	handler := NewMessageHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/messages/send",
		strings.NewReader(`{"complaint_id":"nope","content":"hi","message_type":"private"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withClaims(c, "u-1", models.RoleCitizen)

	handler.Send(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid complaint, sender or recipient", errorMessage(t, rec))
}

func TestMessageHandlerPrivateForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMessageHandler(&fakeMessageSrv{err: appErrors.ErrForbidden})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/messages/complaint/c-1/private", nil)
	c.Params = gin.Params{{Key: "id", Value: "c-1"}}
	withClaims(c, "u-1", models.RoleCitizen)

	handler.Private(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMessageHandlerForUserPassesBothIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeMessageSrv{}
	handler := NewMessageHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/messages/complaint/c-1/user/u-9", nil)
	c.Params = gin.Params{{Key: "id", Value: "c-1"}, {Key: "userId", Value: "u-9"}}
	withClaims(c, "o-1", models.RoleOfficer)

	handler.ForUser(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"c-1", "u-9"}, srv.lastIDs)
}

func TestMessageHandlerPublicNeedsNoActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMessageHandler(&fakeMessageSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/messages/complaint/c-1/public", nil)
	c.Params = gin.Params{{Key: "id", Value: "c-1"}}

	handler.Public(c)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].([]interface{})
	assert.Len(t, data, 1)
}

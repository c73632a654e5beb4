package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

type messageService interface {
	ListPublic(ctx context.Context, complaintID string) ([]models.Message, error)
	ListPrivate(ctx context.Context, actor models.Actor, complaintID string) ([]models.Message, error)
	ListForUser(ctx context.Context, actor models.Actor, complaintID, userID string) ([]models.Message, error)
	Send(ctx context.Context, actor models.Actor, req dto.SendMessageRequest) (*models.Message, error)
}

// MessageHandler serves complaint message threads.
type MessageHandler struct {
	service messageService
}

// NewMessageHandler constructs a message handler.
func NewMessageHandler(svc messageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// Public godoc
// @Summary Public messages of a complaint
// @Tags Messages
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /messages/complaint/{id}/public [get]
func (h *MessageHandler) Public(c *gin.Context) {
	messages, err := h.service.ListPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Private godoc
// @Summary All private messages of a complaint
// @Tags Messages
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /messages/complaint/{id}/private [get]
func (h *MessageHandler) Private(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	messages, err := h.service.ListPrivate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// ForUser godoc
// @Summary Messages visible to a user
// @Description Public messages plus private messages the user sent or received
// @Tags Messages
// @Produce json
// @Param id path string true "Complaint ID"
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /messages/complaint/{id}/user/{userId} [get]
func (h *MessageHandler) ForUser(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	messages, err := h.service.ListForUser(c.Request.Context(), actor, c.Param("id"), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Send godoc
// @Summary Send message
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /messages/send [post]
func (h *MessageHandler) Send(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, &req, "invalid message payload") {
		return
	}
	msg, err := h.service.Send(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

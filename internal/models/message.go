package models

import (
	"errors"
	"strings"
	"time"
)

// MessageType controls who may read a message.
type MessageType string

const (
	MessagePublic  MessageType = "PUBLIC"
	MessagePrivate MessageType = "PRIVATE"
)

var (
	ErrUnknownMessageType  = errors.New("message type must be PUBLIC or PRIVATE")
	ErrRecipientRequired   = errors.New("private messages require a recipient")
	ErrRecipientNotAllowed = errors.New("public messages cannot have a recipient")
	ErrEmptyContent        = errors.New("message content is required")
)

// ParseMessageType accepts the type case-insensitively.
func ParseMessageType(raw string) (MessageType, error) {
	switch MessageType(strings.ToUpper(strings.TrimSpace(raw))) {
	case MessagePublic:
		return MessagePublic, nil
	case MessagePrivate:
		return MessagePrivate, nil
	}
	return "", ErrUnknownMessageType
}

// Message is a note attached to a complaint.
type Message struct {
	ID          string      `db:"id" json:"id"`
	ComplaintID string      `db:"complaint_id" json:"complaint_id"`
	SenderID    string      `db:"sender_id" json:"sender_id"`
	RecipientID *string     `db:"recipient_id" json:"recipient_id,omitempty"`
	Content     string      `db:"content" json:"content"`
	Type        MessageType `db:"message_type" json:"message_type"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`

	SenderUsername    *string `db:"sender_username" json:"sender_username,omitempty"`
	RecipientUsername *string `db:"recipient_username" json:"recipient_username,omitempty"`
}

// NewPublicMessage builds a message visible to every participant of the complaint.
func NewPublicMessage(complaintID, senderID, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return &Message{ComplaintID: complaintID, SenderID: senderID, Content: content, Type: MessagePublic}, nil
}

// NewPrivateMessage builds a message addressed to a single recipient.
func NewPrivateMessage(complaintID, senderID, recipientID, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if strings.TrimSpace(recipientID) == "" {
		return nil, ErrRecipientRequired
	}
	return &Message{ComplaintID: complaintID, SenderID: senderID, RecipientID: &recipientID, Content: content, Type: MessagePrivate}, nil
}

// NewMessage dispatches to the constructor matching typ.
func NewMessage(typ MessageType, complaintID, senderID string, recipientID *string, content string) (*Message, error) {
	switch typ {
	case MessagePublic:
		if recipientID != nil && strings.TrimSpace(*recipientID) != "" {
			return nil, ErrRecipientNotAllowed
		}
		return NewPublicMessage(complaintID, senderID, content)
	case MessagePrivate:
		if recipientID == nil {
			return nil, ErrRecipientRequired
		}
		return NewPrivateMessage(complaintID, senderID, *recipientID, content)
	}
	return nil, ErrUnknownMessageType
}

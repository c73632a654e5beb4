package dto

import "encoding/json"

// SendMessageRequest is the POST /messages/send payload.
type SendMessageRequest struct {
	ComplaintID string  `json:"complaint_id" validate:"required"`
	SenderID    string  `json:"sender_id"`
	RecipientID *string `json:"recipient_id"`
	Content     string  `json:"content" validate:"required"`
	MessageType string  `json:"message_type" validate:"required"`
}

// UnmarshalJSON also accepts the camelCase keys older clients send.
func (r *SendMessageRequest) UnmarshalJSON(data []byte) error {
	type plain SendMessageRequest
	aux := struct {
		*plain
		ComplaintIDAlt string  `json:"complaintId"`
		SenderIDAlt    string  `json:"senderId"`
		RecipientIDAlt *string `json:"recipientId"`
		MessageTypeAlt string  `json:"messageType"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ComplaintID == "" {
		r.ComplaintID = aux.ComplaintIDAlt
	}
	if r.SenderID == "" {
		r.SenderID = aux.SenderIDAlt
	}
	if r.RecipientID == nil {
		r.RecipientID = aux.RecipientIDAlt
	}
	if r.MessageType == "" {
		r.MessageType = aux.MessageTypeAlt
	}
	return nil
}

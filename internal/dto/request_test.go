package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageRequestAcceptsBothSpellings(t *testing.T) {
	var snake SendMessageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"complaint_id":"c-1","sender_id":"u-1","recipient_id":"u-2","content":"x","message_type":"PUBLIC"}`), &snake))

	var camel SendMessageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"complaintId":"c-1","senderId":"u-1","recipientId":"u-2","content":"x","messageType":"PUBLIC"}`), &camel))

	assert.Equal(t, snake, camel)
	require.NotNil(t, camel.RecipientID)
	assert.Equal(t, "u-2", *camel.RecipientID)
}

func TestSendMessageRequestPrefersSnakeCase(t *testing.T) {
	var req SendMessageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"complaint_id":"c-1","complaintId":"c-2","message_type":"PRIVATE","messageType":"PUBLIC"}`), &req))

	assert.Equal(t, "c-1", req.ComplaintID)
	assert.Equal(t, "PRIVATE", req.MessageType)
	assert.Nil(t, req.RecipientID)
}

func TestSendMessageRequestRejectsMalformed(t *testing.T) {
	var req SendMessageRequest
	assert.Error(t, json.Unmarshal([]byte(`{"complaintId":7}`), &req))
}

func TestAssignComplaintRequestAcceptsOfficerID(t *testing.T) {
	cases := map[string]string{
		"snake": `{"officer_id":"o-1"}`,
		"camel": `{"officerId":"o-1"}`,
		"both":  `{"officer_id":"o-1","officerId":"o-2"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var req AssignComplaintRequest
			require.NoError(t, json.Unmarshal([]byte(body), &req))
			assert.Equal(t, "o-1", req.OfficerID)
		})
	}
}

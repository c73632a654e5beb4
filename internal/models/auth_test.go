package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetPasswordRequestAcceptsCamelCase(t *testing.T) {
	var req ResetPasswordRequest
	require.NoError(t, json.Unmarshal([]byte(`{"currentPassword":"old","newPassword":"secret1"}`), &req))
	assert.Equal(t, "old", req.CurrentPassword)
	assert.Equal(t, "secret1", req.NewPassword)

	req = ResetPasswordRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"current_password":"a","currentPassword":"b","new_password":"c"}`), &req))
	assert.Equal(t, "a", req.CurrentPassword)
	assert.Equal(t, "c", req.NewPassword)
}

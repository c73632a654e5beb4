package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComplaintStatus(t *testing.T) {
	cases := map[string]ComplaintStatus{
		"New":                 StatusNew,
		"NEW":                 StatusNew,
		"Complaint Submitted": StatusNew,
		"IN PROGRESS":         StatusInProgress,
		"in_progress":         StatusInProgress,
		"In-Progress":         StatusInProgress,
		"  resolved ":         StatusResolved,
		"Withdrawn":           StatusWithdrawn,
	}
	for raw, want := range cases {
		got, err := ParseComplaintStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseComplaintStatus("Closed")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusNew, StatusInProgress))
	assert.True(t, CanTransition(StatusInProgress, StatusResolved))
	assert.True(t, CanTransition(StatusResolved, StatusInProgress))
	assert.True(t, CanTransition(StatusResolved, StatusResolved))
	assert.True(t, CanTransition(StatusNew, StatusWithdrawn))
	assert.True(t, CanTransition(ComplaintStatus("Closed"), StatusWithdrawn))

	assert.False(t, CanTransition(StatusNew, StatusResolved))
	assert.False(t, CanTransition(StatusResolved, StatusNew))
	assert.False(t, CanTransition(StatusWithdrawn, StatusInProgress))
	assert.False(t, CanTransition(ComplaintStatus("Closed"), StatusNew))
}

func TestComplaintAttachments(t *testing.T) {
	c := &Complaint{}
	assert.Empty(t, c.Attachments())

	c.AttachmentPath = JoinAttachments([]string{"a_1.pdf", "b_2.png"})
	assert.Equal(t, []string{"a_1.pdf", "b_2.png"}, c.Attachments())
	assert.True(t, c.HasAttachment("b_2.png"))
	assert.False(t, c.HasAttachment("c.txt"))

	raw := " a.pdf ,, b.pdf"
	c.AttachmentPath = &raw
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, c.Attachments())
	assert.Nil(t, JoinAttachments(nil))
}

func TestNormalizeSubmissionType(t *testing.T) {
	assert.Equal(t, SubmissionPublic, NormalizeSubmissionType(" public "))
	assert.Equal(t, SubmissionAnonymous, NormalizeSubmissionType("ANONYMOUS"))
	assert.Equal(t, "Internal", NormalizeSubmissionType("Internal"))
}

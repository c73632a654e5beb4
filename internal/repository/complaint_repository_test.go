package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

var complaintRowColumns = []string{
	"id", "subject", "description", "submission_type", "attachment_path", "status", "priority", "category",
	"user_id", "assigned_to_id", "created_at", "updated_at", "submitter_username", "assignee_username",
}

func complaintRow(rows *sqlmock.Rows, id string, status models.ComplaintStatus, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "Streetlight", "Broken for a week", "Public", nil, string(status), "Medium", "Roads",
		"u-1", nil, createdAt, createdAt, "citizen1", nil)
}

func TestComplaintCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("INSERT INTO complaints").WillReturnResult(sqlmock.NewResult(1, 1))

	complaint := &models.Complaint{Subject: "Noise", SubmissionType: "Anonymous"}
	require.NoError(t, repo.Create(context.Background(), complaint))
	assert.NotEmpty(t, complaint.ID)
	assert.Equal(t, models.StatusNew, complaint.Status)
	assert.Equal(t, complaint.CreatedAt, complaint.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(complaintSelect + ` WHERE c.id = $1`)).
		WithArgs("c-1").
		WillReturnRows(complaintRow(sqlmock.NewRows(complaintRowColumns), "c-1", models.StatusNew, now))

	complaint, err := repo.FindByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Streetlight", complaint.Subject)
	require.NotNil(t, complaint.SubmitterUsername)
	assert.Equal(t, "citizen1", *complaint.SubmitterUsername)
	assert.Nil(t, complaint.AssignedToID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintListWithFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now()
	status := models.StatusInProgress
	mock.ExpectQuery(regexp.QuoteMeta(complaintSelect+` WHERE c.status = $1 AND c.category = $2 ORDER BY c.created_at DESC, c.id LIMIT 10 OFFSET 10`)).
		WithArgs("IN PROGRESS", "Roads").
		WillReturnRows(complaintRow(sqlmock.NewRows(complaintRowColumns), "c-1", status, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM complaints c WHERE c.status = $1 AND c.category = $2`)).
		WithArgs("IN PROGRESS", "Roads").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	items, total, err := repo.List(context.Background(), models.ComplaintFilter{Status: &status, Category: "Roads", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintListOlderThanWithStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	cutoff := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(complaintRowColumns)
	complaintRow(rows, "c-old", models.StatusInProgress, cutoff.Add(-96*time.Hour))
	complaintRow(rows, "c-mid", models.StatusInProgress, cutoff.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.status = $1 AND c.created_at < $2 ORDER BY c.created_at ASC`)).
		WithArgs("IN PROGRESS", cutoff).
		WillReturnRows(rows)

	items, err := repo.ListOlderThanWithStatus(context.Background(), models.StatusInProgress, cutoff)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c-old", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintListCreatedBetweenWithCategories(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 31)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.created_at >= $1 AND c.created_at < $2 AND c.category = ANY($3) ORDER BY c.created_at, c.id`)).
		WithArgs(from, to, sqlmock.AnyArg()).
		WillReturnRows(complaintRow(sqlmock.NewRows(complaintRowColumns), "c-1", models.StatusNew, from))

	items, err := repo.ListCreatedBetween(context.Background(), from, to, []string{"Roads", "Water"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, COUNT(*) AS count FROM complaints GROUP BY status`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("New", 3).AddRow("Closed", 1))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StatusCount{{Status: models.StatusNew, Count: 3}, {Status: "Closed", Count: 1}}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintUpdateFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now()
	subject := "Updated"
	priority := "High"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE complaints SET subject = $1, priority = $2, updated_at = $3 WHERE id = $4`)).
		WithArgs("Updated", "High", now, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateFields(context.Background(), "c-1", models.ComplaintUpdate{Subject: &subject, Priority: &priority}, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintUpdateFieldsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now()
	mock.ExpectExec("UPDATE complaints SET updated_at = \\$1 WHERE id = \\$2").
		WithArgs(now, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields(context.Background(), "missing", models.ComplaintUpdate{}, now)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestComplaintUpdateStatusStale(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE complaints SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`)).
		WithArgs("c-1", "New", "IN PROGRESS", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "c-1", models.StatusNew, models.StatusInProgress, now)
	assert.ErrorIs(t, err, ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintAssign(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT assigned_to_id FROM complaints WHERE id = $1 FOR UPDATE`)).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to_id"}).AddRow("officer-old"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE complaints SET assigned_to_id = $2, status = $3, updated_at = $4 WHERE id = $1`)).
		WithArgs("c-1", "officer-new", "IN PROGRESS", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	prev, err := repo.Assign(context.Background(), "c-1", "officer-new", now)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "officer-old", *prev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintAssignMissingComplaintRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"assigned_to_id"}))
	mock.ExpectRollback()

	_, err := repo.Assign(context.Background(), "missing", "officer-1", time.Now())
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintAttachmentReferenced(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery("string_to_array").WithArgs("abc_file.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.AttachmentReferenced(context.Background(), "abc_file.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

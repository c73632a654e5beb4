//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/pkg/database"
)

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("complaints_test"),
		postgres.WithUsername("complaints"),
		postgres.WithPassword("complaints"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(ctx, db, zap.NewNop()))
	return db
}

func TestComplaintLifecycleAgainstPostgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	complaints := NewComplaintRepository(db)
	messages := NewMessageRepository(db)

	citizen := &models.User{Username: "citizen1", PasswordHash: "h", Email: "c1@example.com", Role: models.RoleCitizen}
	officer := &models.User{Username: "officer1", PasswordHash: "h", Email: "o1@example.com", Role: models.RoleOfficer}
	require.NoError(t, users.Create(ctx, citizen))
	require.NoError(t, users.Create(ctx, officer))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Username: "citizen1", PasswordHash: "h", Email: "x@example.com", Role: models.RoleCitizen}), ErrDuplicate)

	complaint := &models.Complaint{
		Subject:        "Pothole",
		Description:    "Deep pothole on Main St",
		SubmissionType: models.SubmissionPublic,
		Priority:       models.DefaultPriority,
		Category:       "Roads",
		UserID:         &citizen.ID,
		AttachmentPath: models.JoinAttachments([]string{"a_photo.png", "b_doc.pdf"}),
	}
	require.NoError(t, complaints.Create(ctx, complaint))

	referenced, err := complaints.AttachmentReferenced(ctx, "b_doc.pdf")
	require.NoError(t, err)
	assert.True(t, referenced)
	referenced, err = complaints.AttachmentReferenced(ctx, "c_other.pdf")
	require.NoError(t, err)
	assert.False(t, referenced)

	prev, err := complaints.Assign(ctx, complaint.ID, officer.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, prev)

	stored, err := complaints.FindByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	require.NotNil(t, stored.AssigneeUsername)
	assert.Equal(t, "officer1", *stored.AssigneeUsername)

	assert.ErrorIs(t, complaints.UpdateStatus(ctx, complaint.ID, models.StatusNew, models.StatusResolved, time.Now().UTC()), ErrStale)
	require.NoError(t, complaints.UpdateStatus(ctx, complaint.ID, models.StatusInProgress, models.StatusResolved, time.Now().UTC()))

	public, err := models.NewPublicMessage(complaint.ID, officer.ID, "We are on it")
	require.NoError(t, err)
	private, err := models.NewPrivateMessage(complaint.ID, officer.ID, citizen.ID, "Please send a photo")
	require.NoError(t, err)
	require.NoError(t, messages.Create(ctx, public))
	require.NoError(t, messages.Create(ctx, private))

	visible, err := messages.ListVisibleTo(ctx, complaint.ID, citizen.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
	visible, err = messages.ListVisibleTo(ctx, complaint.ID, officer.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	admin := &models.User{Username: "admin1", PasswordHash: "h", Email: "a1@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, admin))
	visible, err = messages.ListVisibleTo(ctx, complaint.ID, admin.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	counts, err := complaints.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.StatusCount{{Status: models.StatusResolved, Count: 1}}, counts)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

func TestSeedOfficersIsIdempotent(t *testing.T) {
	repo := newMockAuthRepo(&models.User{ID: testOfficerID, Username: "officer2", Role: models.RoleOfficer})
	svc := NewSeedService(repo, nil)

	created, err := svc.SeedOfficers(context.Background(), "officer123")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	officer1 := repo.users["officer1"]
	require.NotNil(t, officer1)
	assert.Equal(t, models.RoleOfficer, officer1.Role)
	assert.Equal(t, "officer1@example.com", officer1.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(officer1.PasswordHash), []byte("officer123")))
	assert.Equal(t, testOfficerID, repo.users["officer2"].ID)

	created, err = svc.SeedOfficers(context.Background(), "officer123")
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, repo.users, 3)
}

func TestSeedOfficersRequiresPassword(t *testing.T) {
	_, err := NewSeedService(newMockAuthRepo(), nil).SeedOfficers(context.Background(), "")
	assert.Error(t, err)
}

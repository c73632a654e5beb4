package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/internal/repository"
)

const seededOfficerCount = 3

type seedUserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

// SeedService bootstraps the officer accounts the admin UI expects.
type SeedService struct {
	users  seedUserRepository
	logger *zap.Logger
}

// NewSeedService constructs a SeedService.
func NewSeedService(users seedUserRepository, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, logger: logger}
}

// SeedOfficers creates officer1..officer3 when missing and returns how many were created.
func (s *SeedService) SeedOfficers(ctx context.Context, password string) (int, error) {
	if password == "" {
		return 0, fmt.Errorf("seed officers: password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("seed officers: hash password: %w", err)
	}

	created := 0
	for i := 1; i <= seededOfficerCount; i++ {
		username := fmt.Sprintf("officer%d", i)
		exists, err := s.users.ExistsByUsername(ctx, username)
		if err != nil {
			return created, fmt.Errorf("seed officers: %w", err)
		}
		if exists {
			continue
		}
		user := &models.User{
			Username:     username,
			PasswordHash: string(hash),
			Email:        username + "@example.com",
			Role:         models.RoleOfficer,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return created, fmt.Errorf("seed officers: %w", err)
		}
		created++
	}
	if created > 0 {
		s.logger.Info("seeded officer accounts", zap.Int("created", created))
	}
	return created, nil
}

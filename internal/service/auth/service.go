// Package auth implements staff authentication: password login against
// staff accounts and access-token issuance.
package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/staff"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// credentialsRepo defines the staff credential lookup the service needs.
type credentialsRepo interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*staff.Credentials, error)
}

// jwtManager defines the token management interface the service needs.
type jwtManager interface {
	GenerateAccessToken(staffID uuid.UUID, staffType domain.StaffType) (string, error)
}

// Service implements auth operations.
type Service struct {
	log   *slog.Logger
	staff credentialsRepo
	jwt   jwtManager
}

// NewService creates a new auth service instance.
func NewService(logger *slog.Logger, staff credentialsRepo, jwt jwtManager) *Service {
	return &Service{
		log:   logger.With("service", "auth"),
		staff: staff,
		jwt:   jwt,
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// LoginResult is returned by Login.
type LoginResult struct {
	AccessToken string
	StaffID     uuid.UUID
	StaffType   domain.StaffType
}

// Login authenticates a staff member with email + password. Unknown emails,
// archived accounts, and wrong passwords all report ErrUnauthorized so a
// caller cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.staff.GetCredentialsByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.Login get credentials: %w", err)
	}

	if creds.IsArchived || creds.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.jwt.GenerateAccessToken(creds.ID, creds.StaffType)
	if err != nil {
		return nil, fmt.Errorf("auth.Login generate token: %w", err)
	}

	s.log.InfoContext(ctx, "staff member logged in",
		slog.String("staff_id", creds.ID.String()))

	return &LoginResult{
		AccessToken: token,
		StaffID:     creds.ID,
		StaffType:   creds.StaffType,
	}, nil
}

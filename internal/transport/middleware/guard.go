package middleware

import (
	"context"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/pkg/ctxutil"
)

// RequireActor returns domain.ErrUnauthorized if no authenticated staff
// member is present in the context. Use in handlers, not as HTTP middleware.
func RequireActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return actor, nil
}

// RequireAdmin returns domain.ErrForbidden if the context actor is not an
// ADMIN staff member.
func RequireAdmin(ctx context.Context) error {
	actor, err := RequireActor(ctx)
	if err != nil {
		return err
	}
	if actor.StaffType != domain.StaffTypeAdmin {
		return domain.ErrForbidden
	}
	return nil
}

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// Restore moves an archived record back to the active state, clearing the
// archive triple and refreshing the modification stamp. Restoring an
// already-active record is a no-op that returns it unchanged.
func (e *Engine) Restore(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	actor := actorFrom(ctx)
	now := e.now()

	var restored *domain.Record
	var noop bool
	err = e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, getErr := e.store.GetArchived(txCtx, kind, id)
		if getErr != nil {
			if !errors.Is(getErr, store.ErrNotFound) {
				return e.mapStoreErr(txCtx, meta, id, nil, getErr)
			}
			// Not archived: either already active (no-op) or truly absent.
			active, actErr := e.store.GetActive(txCtx, kind, id)
			if actErr != nil {
				return e.mapStoreErr(txCtx, meta, id, nil, actErr)
			}
			restored, noop = active, true
			return nil
		}

		back, resErr := e.store.Restore(txCtx, kind, id)
		if resErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, resErr)
		}

		// The restore itself is a modification: refresh the stamp.
		back.LastModifiedAt = now
		back.LastModifiedBy = actor.ID
		var updErr error
		restored, updErr = e.store.Update(txCtx, kind, id, back)
		if updErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, updErr)
		}

		if auditErr := e.audit.Append(txCtx, domain.AuditRecord{
			ID:        e.newID(),
			ActorID:   actor.ID,
			Kind:      kind,
			EntityID:  &id,
			Action:    domain.AuditActionRestore,
			CreatedAt: now,
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if noop {
		return restored, nil
	}

	e.log.InfoContext(ctx, "record restored",
		slog.String("kind", string(kind)),
		slog.String("id", id.String()),
		slog.String("actor_id", actor.ID.String()),
	)

	return restored, nil
}

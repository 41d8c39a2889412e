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

// Archive moves an active record to the archived state. Archiving is
// blocked while active dependents reference the record; archiving an
// already-archived record is a no-op that returns it unchanged.
func (e *Engine) Archive(ctx context.Context, kind domain.Kind, id uuid.UUID, reason string) (*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	actor := actorFrom(ctx)
	now := e.now()

	var archived *domain.Record
	var noop bool
	err = e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, getErr := e.store.GetActive(txCtx, kind, id)
		if getErr != nil {
			if !errors.Is(getErr, store.ErrNotFound) {
				return e.mapStoreErr(txCtx, meta, id, nil, getErr)
			}
			// Not active: either already archived (no-op) or truly absent.
			prior, archErr := e.store.GetArchived(txCtx, kind, id)
			if archErr != nil {
				return e.mapStoreErr(txCtx, meta, id, nil, archErr)
			}
			archived, noop = prior, true
			return nil
		}

		blocking, depErr := e.blockingLabels(txCtx, meta, id, true)
		if depErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, depErr)
		}
		if len(blocking) > 0 {
			return &domain.ArchiveBlockedError{Kind: kind, ID: id, Blocking: blocking}
		}

		var markErr error
		archived, markErr = e.store.MarkArchived(txCtx, kind, id, actor.ID, reason)
		if markErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, markErr)
		}

		if auditErr := e.audit.Append(txCtx, domain.AuditRecord{
			ID:        e.newID(),
			ActorID:   actor.ID,
			Kind:      kind,
			EntityID:  &id,
			Action:    domain.AuditActionArchive,
			Changes:   archiveChanges(reason),
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
		return archived, nil
	}

	e.log.InfoContext(ctx, "record archived",
		slog.String("kind", string(kind)),
		slog.String("id", id.String()),
		slog.String("actor_id", actor.ID.String()),
	)

	return archived, nil
}

func archiveChanges(reason string) map[string]any {
	if reason == "" {
		return nil
	}
	return map[string]any{"archive_reason": map[string]any{"new": reason}}
}

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

// HardDelete permanently removes a record, active or archived. Deletion is
// blocked while any dependent references the record, archived dependents
// included. The pre-check and the delete run in one transaction; a
// foreign-key violation raised by the database anyway is translated too.
func (e *Engine) HardDelete(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return err
	}

	actor := actorFrom(ctx)
	now := e.now()

	err = e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		target, wasArchived, getErr := e.findEither(txCtx, kind, id)
		if getErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, getErr)
		}

		blocking, depErr := e.blockingLabels(txCtx, meta, id, false)
		if depErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, depErr)
		}
		if len(blocking) > 0 {
			return &domain.InUseError{Kind: kind, ID: id, Blocking: blocking}
		}

		var delErr error
		if wasArchived {
			delErr = e.store.HardDeleteArchived(txCtx, kind, id)
		} else {
			delErr = e.store.HardDeleteActive(txCtx, kind, id)
		}
		if delErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, delErr)
		}

		if auditErr := e.audit.Append(txCtx, domain.AuditRecord{
			ID:        e.newID(),
			ActorID:   actor.ID,
			Kind:      kind,
			EntityID:  &id,
			Action:    domain.AuditActionDelete,
			Changes:   deletedChanges(target),
			CreatedAt: now,
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return err
	}

	e.log.InfoContext(ctx, "record deleted",
		slog.String("kind", string(kind)),
		slog.String("id", id.String()),
		slog.String("actor_id", actor.ID.String()),
	)

	return nil
}

// findEither loads a record regardless of archive state, reporting which
// state it was in.
func (e *Engine) findEither(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, bool, error) {
	rec, err := e.store.GetActive(ctx, kind, id)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}
	rec, err = e.store.GetArchived(ctx, kind, id)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// deletedChanges keeps a final snapshot of the removed record's attributes
// in the audit trail.
func deletedChanges(rec *domain.Record) map[string]any {
	if len(rec.Attrs) == 0 {
		return nil
	}
	changes := make(map[string]any, len(rec.Attrs))
	for name, value := range rec.Attrs {
		changes[name] = map[string]any{"old": value}
	}
	return changes
}

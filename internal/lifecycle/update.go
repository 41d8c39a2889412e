package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// Update applies a partial attribute patch to an active record. Archived
// records are not updatable and report not found. The patch is validated
// field by field; untouched attributes keep their stored values.
func (e *Engine) Update(ctx context.Context, kind domain.Kind, id uuid.UUID, attrs map[string]any) (*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	if len(attrs) == 0 {
		return nil, domain.NewValidationError("attributes", "no attributes to update")
	}
	if err := e.checkAttrs(meta, attrs, false); err != nil {
		return nil, err
	}

	actor := actorFrom(ctx)
	now := e.now()

	var updated *domain.Record
	err = e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, getErr := e.store.GetActive(txCtx, kind, id)
		if getErr != nil {
			return e.mapStoreErr(txCtx, meta, id, nil, getErr)
		}

		next := current.Clone()
		for name, value := range attrs {
			next.SetAttr(name, value)
		}
		next.LastModifiedAt = now
		next.LastModifiedBy = actor.ID

		var updErr error
		updated, updErr = e.store.Update(txCtx, kind, id, next)
		if updErr != nil {
			return e.mapStoreErr(txCtx, meta, id, attrs, updErr)
		}

		changes := diffChanges(current, attrs)
		if len(changes) == 0 {
			// A patch that changes nothing still touches last_modified but
			// leaves no audit trail entry.
			return nil
		}

		if auditErr := e.audit.Append(txCtx, domain.AuditRecord{
			ID:        e.newID(),
			ActorID:   actor.ID,
			Kind:      kind,
			EntityID:  &id,
			Action:    domain.AuditActionUpdate,
			Changes:   changes,
			CreatedAt: now,
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.InfoContext(ctx, "record updated",
		slog.String("kind", string(kind)),
		slog.String("id", id.String()),
		slog.String("actor_id", actor.ID.String()),
	)

	return updated, nil
}

// diffChanges records old/new pairs for the attributes the patch actually
// changed.
func diffChanges(current *domain.Record, attrs map[string]any) map[string]any {
	changes := make(map[string]any)
	for name, value := range attrs {
		old := current.Attr(name)
		if reflect.DeepEqual(old, value) {
			continue
		}
		changes[name] = map[string]any{"old": old, "new": value}
	}
	return changes
}

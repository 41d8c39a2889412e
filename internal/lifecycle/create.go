package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// Create validates the attributes, stamps the actor and timestamps, and
// persists a new active record. Unique and foreign-key violations come back
// as domain errors.
func (e *Engine) Create(ctx context.Context, kind domain.Kind, attrs map[string]any) (*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	if attrs == nil {
		attrs = make(map[string]any)
	}
	if err := e.checkAttrs(meta, attrs, true); err != nil {
		return nil, err
	}

	actor := actorFrom(ctx)
	now := e.now()

	rec := &domain.Record{
		ID:             e.newID(),
		Kind:           kind,
		Attrs:          attrs,
		CreatedAt:      now,
		CreatedBy:      actor.ID,
		LastModifiedAt: now,
		LastModifiedBy: actor.ID,
	}

	var created *domain.Record
	err = e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var insertErr error
		created, insertErr = e.store.Insert(txCtx, kind, rec)
		if insertErr != nil {
			return e.mapStoreErr(txCtx, meta, rec.ID, attrs, insertErr)
		}

		if auditErr := e.audit.Append(txCtx, domain.AuditRecord{
			ID:        e.newID(),
			ActorID:   actor.ID,
			Kind:      kind,
			EntityID:  &created.ID,
			Action:    domain.AuditActionCreate,
			Changes:   newChanges(attrs),
			CreatedAt: now,
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.InfoContext(ctx, "record created",
		slog.String("kind", string(kind)),
		slog.String("id", created.ID.String()),
		slog.String("actor_id", actor.ID.String()),
	)

	return created, nil
}

// newChanges shapes a creation's attributes as audit changes.
func newChanges(attrs map[string]any) map[string]any {
	changes := make(map[string]any, len(attrs))
	for name, value := range attrs {
		changes[name] = map[string]any{"new": value}
	}
	return changes
}

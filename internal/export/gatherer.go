// Package export builds display-ready snapshots of a single entity by
// walking the catalog's outbound relations and applying their declarative
// projections. Rendering to bytes lives in export/render.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// Snapshot is the gathered view of one entity: its own fields plus one
// section per catalog relation, in catalog order.
type Snapshot struct {
	Kind     domain.Kind
	Label    string
	Archived bool
	Fields   map[string]any
	Sections []Section
}

// Section is the projected result of one relation. For a to-one relation
// One is nil when the reference is unset or the related record is gone;
// for a to-many relation Many holds zero or more projected rows.
type Section struct {
	Name string
	Mode catalog.RelationMode

	// Columns preserves the projection's declaration order so renderers
	// emit stable headers.
	Columns []string

	One  map[string]any
	Many []map[string]any
}

// Gatherer loads entities and their relations for export.
type Gatherer struct {
	log   *slog.Logger
	cat   *catalog.Catalog
	store store.Store
}

func New(log *slog.Logger, cat *catalog.Catalog, st store.Store) *Gatherer {
	return &Gatherer{
		log:   log.With("service", "export"),
		cat:   cat,
		store: st,
	}
}

// Gather builds a snapshot for the record, archived or not, and returns it
// together with a filesystem-safe file stem for download names.
func (g *Gatherer) Gather(ctx context.Context, kind domain.Kind, id uuid.UUID) (*Snapshot, string, error) {
	meta, err := g.cat.MetadataFor(kind)
	if err != nil {
		return nil, "", err
	}

	rec, err := g.store.GetActive(ctx, kind, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, "", g.storeErr(ctx, meta, id, err)
		}
		rec, err = g.store.GetArchived(ctx, kind, id)
		if err != nil {
			return nil, "", g.storeErr(ctx, meta, id, err)
		}
	}

	snap := &Snapshot{
		Kind:     kind,
		Label:    meta.Label,
		Archived: rec.IsArchived,
		Fields:   ownFields(rec),
	}

	for _, rel := range meta.Relations {
		section, secErr := g.gatherRelation(ctx, rec, rel)
		if secErr != nil {
			return nil, "", g.storeErr(ctx, meta, id, secErr)
		}
		snap.Sections = append(snap.Sections, section)
	}

	g.log.InfoContext(ctx, "snapshot gathered",
		slog.String("kind", string(kind)),
		slog.String("id", id.String()),
		slog.Int("sections", len(snap.Sections)),
	)

	return snap, fileStem(meta, rec), nil
}

func (g *Gatherer) gatherRelation(ctx context.Context, rec *domain.Record, rel catalog.Relation) (Section, error) {
	section := Section{Name: rel.Name, Mode: rel.Mode, Columns: projectionColumns(rel.Projection)}

	switch rel.Mode {
	case catalog.RelationOne:
		refID, ok := uuidAttr(rec.Attr(rel.Attribute))
		if !ok {
			return section, nil
		}
		related, err := g.store.GetActive(ctx, rel.Kind, refID)
		if errors.Is(err, store.ErrNotFound) {
			related, err = g.store.GetArchived(ctx, rel.Kind, refID)
		}
		if errors.Is(err, store.ErrNotFound) {
			// A dangling reference renders as an absent section.
			return section, nil
		}
		if err != nil {
			return section, err
		}
		section.One = project(related, rel.Projection)

	case catalog.RelationMany:
		// A snapshot is complete or it is wrong; keep paging until a
		// short page instead of stopping at the list endpoint's cap.
		spec := domain.QuerySpec{
			Equals:   map[string]any{rel.Attribute: rec.ID},
			OrderBy:  "created_at",
			OrderDir: domain.SortAsc,
			Limit:    domain.MaxLimit,
		}
		section.Many = []map[string]any{}
		for {
			page, err := g.store.Query(ctx, rel.Kind, spec)
			if err != nil {
				return section, err
			}
			for _, r := range page {
				section.Many = append(section.Many, project(r, rel.Projection))
			}
			if len(page) < spec.Limit {
				break
			}
			spec.Offset += spec.Limit
		}
	}

	return section, nil
}

func (g *Gatherer) storeErr(ctx context.Context, meta *catalog.Descriptor, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &domain.NotFoundError{Kind: meta.Kind, ID: id, Label: meta.Label}
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%s: %w", meta.Kind, domain.ErrUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		g.log.ErrorContext(ctx, "storage fault",
			slog.String("kind", string(meta.Kind)),
			slog.String("id", id.String()),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: %w", meta.Kind, domain.ErrStorageFault)
	}
}

// ownFields flattens the record's envelope and attributes into one map.
func ownFields(rec *domain.Record) map[string]any {
	fields := make(map[string]any, len(rec.Attrs)+4)
	fields["id"] = rec.ID
	for name, value := range rec.Attrs {
		fields[name] = value
	}
	fields["created_at"] = rec.CreatedAt
	fields["last_modified_at"] = rec.LastModifiedAt
	if rec.IsArchived {
		fields["archived_at"] = rec.ArchivedAt
		if rec.ArchiveReason != nil {
			fields["archive_reason"] = *rec.ArchiveReason
		}
	}
	return fields
}

func projectionColumns(projection []catalog.ProjectedField) []string {
	cols := make([]string, 0, len(projection))
	for _, p := range projection {
		cols = append(cols, p.As)
	}
	return cols
}

func project(rec *domain.Record, projection []catalog.ProjectedField) map[string]any {
	out := make(map[string]any, len(projection))
	for _, p := range projection {
		out[p.As] = rec.Attr(p.From)
	}
	return out
}

// fileStem derives a download-friendly stem: the kind plus the record's
// name fields when it has them, its id prefix otherwise.
func fileStem(meta *catalog.Descriptor, rec *domain.Record) string {
	parts := []string{string(meta.Kind)}
	if len(meta.FullNameFields) > 0 {
		for _, f := range meta.FullNameFields {
			if s := rec.StringAttr(f); s != "" {
				parts = append(parts, s)
			}
		}
	} else if s := rec.StringAttr("name"); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 1 {
		parts = append(parts, rec.ID.String()[:8])
	}
	return slug(strings.Join(parts, " "))
}

func slug(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('_')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func uuidAttr(value any) (uuid.UUID, bool) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	default:
		return uuid.Nil, false
	}
}

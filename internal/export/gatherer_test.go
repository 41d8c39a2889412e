package export

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// storeStub implements store.Store with per-method funcs; only the methods
// the gatherer touches are populated in tests.
type storeStub struct {
	getActive   func(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	getArchived func(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	query       func(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error)
}

func (s *storeStub) GetActive(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	return s.getActive(ctx, kind, id)
}

func (s *storeStub) GetArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	if s.getArchived == nil {
		return nil, store.ErrNotFound
	}
	return s.getArchived(ctx, kind, id)
}

func (s *storeStub) Query(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
	return s.query(ctx, kind, spec)
}

func (s *storeStub) Insert(context.Context, domain.Kind, *domain.Record) (*domain.Record, error) {
	panic("not used")
}

func (s *storeStub) ExistsActive(context.Context, domain.Kind, uuid.UUID) (bool, error) {
	panic("not used")
}

func (s *storeStub) QueryArchived(context.Context, domain.Kind, domain.QuerySpec) ([]*domain.Record, error) {
	panic("not used")
}

func (s *storeStub) Update(context.Context, domain.Kind, uuid.UUID, *domain.Record) (*domain.Record, error) {
	panic("not used")
}

func (s *storeStub) MarkArchived(context.Context, domain.Kind, uuid.UUID, uuid.UUID, string) (*domain.Record, error) {
	panic("not used")
}

func (s *storeStub) Restore(context.Context, domain.Kind, uuid.UUID) (*domain.Record, error) {
	panic("not used")
}

func (s *storeStub) HardDeleteActive(context.Context, domain.Kind, uuid.UUID) error {
	panic("not used")
}

func (s *storeStub) HardDeleteArchived(context.Context, domain.Kind, uuid.UUID) error {
	panic("not used")
}

func (s *storeStub) CountDependents(context.Context, catalog.DependencyEdge, uuid.UUID, bool) (int64, error) {
	panic("not used")
}

func record(kind domain.Kind, id uuid.UUID, attrs map[string]any) *domain.Record {
	created := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	return &domain.Record{
		ID:             id,
		Kind:           kind,
		Attrs:          attrs,
		CreatedAt:      created,
		CreatedBy:      domain.SystemActorID,
		LastModifiedAt: created,
		LastModifiedBy: domain.SystemActorID,
	}
}

func TestGather_Student(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()
	levelID := uuid.New()
	guardianID := uuid.New()

	st := &storeStub{
		getActive: func(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
			switch kind {
			case domain.KindStudent:
				return record(kind, id, map[string]any{
					"first_name":    "Ada",
					"last_name":     "Obi",
					"admission_no":  "ADM-0042",
					"level_id":      levelID,
					"class_id":      nil,
					"department_id": nil,
					"guardian_id":   guardianID,
				}), nil
			case domain.KindAcademicLevel:
				return record(kind, id, map[string]any{"name": "JSS 1"}), nil
			case domain.KindGuardian:
				return record(kind, id, map[string]any{
					"first_name": "Ngozi",
					"last_name":  "Obi",
					"phone":      "08031234567",
				}), nil
			default:
				t.Fatalf("unexpected GetActive for kind %s", kind)
				return nil, nil
			}
		},
		query: func(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
			if kind == domain.KindGrade {
				return []*domain.Record{
					record(kind, uuid.New(), map[string]any{
						"subject_id":   uuid.New(),
						"ca_score":     30.0,
						"exam_score":   55.0,
						"total_score":  85.0,
						"grade_letter": "A",
					}),
				}, nil
			}
			return nil, nil
		},
	}

	g := New(slog.Default(), catalog.Default(), st)

	snap, stem, err := g.Gather(context.Background(), domain.KindStudent, studentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stem != "student_ada_obi" {
		t.Errorf("file stem: got %q, want %q", stem, "student_ada_obi")
	}
	if snap.Label != "student" {
		t.Errorf("label: got %q", snap.Label)
	}
	if snap.Fields["admission_no"] != "ADM-0042" {
		t.Errorf("fields: got %v", snap.Fields)
	}

	// Student declares seven relations; every one gets a section.
	if len(snap.Sections) != 7 {
		t.Fatalf("sections: got %d, want 7", len(snap.Sections))
	}

	byName := make(map[string]Section)
	for _, s := range snap.Sections {
		byName[s.Name] = s
	}

	level := byName["level"]
	if level.One == nil || level.One["level"] != "JSS 1" {
		t.Errorf("level section: got %+v", level.One)
	}
	// class_id is unset, so the class section stays empty.
	if byName["class"].One != nil {
		t.Errorf("class section: got %+v, want nil", byName["class"].One)
	}
	grades := byName["grades"]
	if len(grades.Many) != 1 || grades.Many[0]["grade"] != "A" {
		t.Errorf("grades section: got %+v", grades.Many)
	}
}

func TestGather_ManyRelationPaged(t *testing.T) {
	t.Parallel()

	const total = domain.MaxLimit + 30

	deptID := uuid.New()
	subjects := make([]*domain.Record, total)
	for i := range subjects {
		subjects[i] = record(domain.KindSubject, uuid.New(), map[string]any{
			"name": "Subject", "code": "SUB",
		})
	}

	var offsets []int
	st := &storeStub{
		getActive: func(ctx context.Context, kind domain.Kind, rid uuid.UUID) (*domain.Record, error) {
			return record(kind, rid, map[string]any{"name": "Sciences", "description": nil}), nil
		},
		query: func(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
			if kind != domain.KindSubject {
				t.Fatalf("unexpected Query for kind %s", kind)
			}
			if spec.OrderBy != "created_at" || spec.OrderDir != domain.SortAsc {
				t.Errorf("sort: got %s %s, want created_at asc", spec.OrderBy, spec.OrderDir)
			}
			offsets = append(offsets, spec.Offset)
			end := spec.Offset + spec.Limit
			if end > total {
				end = total
			}
			if spec.Offset >= total {
				return nil, nil
			}
			return subjects[spec.Offset:end], nil
		},
	}

	g := New(slog.Default(), catalog.Default(), st)

	snap, _, err := g.Gather(context.Background(), domain.KindDepartment, deptID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(snap.Sections))
	}
	if got := len(snap.Sections[0].Many); got != total {
		t.Errorf("subjects rows: got %d, want all %d", got, total)
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != domain.MaxLimit {
		t.Errorf("page offsets: got %v, want [0 %d]", offsets, domain.MaxLimit)
	}
}

func TestGather_ArchivedFallback(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	archivedAt := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	reason := "closed down"

	st := &storeStub{
		getActive: func(ctx context.Context, kind domain.Kind, rid uuid.UUID) (*domain.Record, error) {
			return nil, store.ErrNotFound
		},
		getArchived: func(ctx context.Context, kind domain.Kind, rid uuid.UUID) (*domain.Record, error) {
			rec := record(kind, rid, map[string]any{"name": "Home Economics", "description": nil})
			rec.IsArchived = true
			rec.ArchivedAt = &archivedAt
			rec.ArchiveReason = &reason
			return rec, nil
		},
		query: func(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
			return nil, nil
		},
	}

	g := New(slog.Default(), catalog.Default(), st)

	snap, stem, err := g.Gather(context.Background(), domain.KindDepartment, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Archived {
		t.Error("snapshot should be marked archived")
	}
	if snap.Fields["archive_reason"] != "closed down" {
		t.Errorf("archive reason: got %v", snap.Fields["archive_reason"])
	}
	if stem != "department_home_economics" {
		t.Errorf("file stem: got %q", stem)
	}
}

func TestGather_Missing(t *testing.T) {
	t.Parallel()

	st := &storeStub{
		getActive: func(ctx context.Context, kind domain.Kind, rid uuid.UUID) (*domain.Record, error) {
			return nil, store.ErrNotFound
		},
	}
	g := New(slog.Default(), catalog.Default(), st)

	_, _, err := g.Gather(context.Background(), domain.KindDepartment, uuid.New())

	var nferr *domain.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("error: got %v, want *NotFoundError", err)
	}
}

func TestGather_UnknownKind(t *testing.T) {
	t.Parallel()

	g := New(slog.Default(), catalog.Default(), &storeStub{})

	_, _, err := g.Gather(context.Background(), domain.Kind("classroom"), uuid.New())
	if !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("error: got %v, want ErrUnknownKind", err)
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"student Ada Obi", "student_ada_obi"},
		{"JSS 1 (A)", "jss_1_a"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

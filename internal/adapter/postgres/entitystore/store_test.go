package entitystore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/testutil"
	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// departmentColumns mirrors the column order the store builds for the
// department kind: id, attributes, envelope.
var departmentColumns = []string{
	"id", "name", "description",
	"is_archived",
	"created_at", "created_by",
	"last_modified_at", "last_modified_by",
	"archived_at", "archived_by", "archive_reason",
}

func departmentRow(id, actor uuid.UUID, name string, now time.Time) []any {
	return []any{id, name, nil, false, now, actor, now, actor, nil, nil, nil}
}

func TestStore_GetActive(t *testing.T) {
	depID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		kind    domain.Kind
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		check   func(t *testing.T, rec *domain.Record)
	}{
		{
			name: "found",
			kind: domain.KindDepartment,
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(departmentColumns).
					AddRow(departmentRow(depID, actorID, "Sciences", now)...)
				mock.ExpectQuery(`SELECT .+ FROM departments`).
					WithArgs(depID, false).
					WillReturnRows(rows)
			},
			check: func(t *testing.T, rec *domain.Record) {
				if rec.ID != depID {
					t.Errorf("GetActive() id = %v, want %v", rec.ID, depID)
				}
				if got := rec.StringAttr("name"); got != "Sciences" {
					t.Errorf("GetActive() name = %q, want %q", got, "Sciences")
				}
				if rec.Kind != domain.KindDepartment {
					t.Errorf("GetActive() kind = %v, want %v", rec.Kind, domain.KindDepartment)
				}
				if rec.IsArchived {
					t.Error("GetActive() returned archived record")
				}
			},
		},
		{
			name: "not found",
			kind: domain.KindDepartment,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM departments`).
					WithArgs(depID, false).
					WillReturnRows(pgxmock.NewRows(departmentColumns))
			},
			wantErr: store.ErrNotFound,
		},
		{
			name:    "unknown kind",
			kind:    domain.Kind("starship"),
			setup:   func(mock pgxmock.PgxPoolIface) {},
			wantErr: domain.ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			s := New(querier, catalog.Default())
			tt.setup(mock)

			rec, err := s.GetActive(context.Background(), tt.kind, depID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetActive() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("GetActive() unexpected error: %v", err)
				}
				tt.check(t, rec)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestStore_Insert(t *testing.T) {
	depID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	rec := &domain.Record{
		ID:             depID,
		Kind:           domain.KindDepartment,
		Attrs:          map[string]any{"name": "Sciences"},
		CreatedAt:      now,
		CreatedBy:      actorID,
		LastModifiedAt: now,
		LastModifiedBy: actorID,
	}

	t.Run("successful insert", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		rows := pgxmock.NewRows(departmentColumns).
			AddRow(departmentRow(depID, actorID, "Sciences", now)...)
		mock.ExpectQuery(`INSERT INTO departments`).
			WithArgs(
				depID, "Sciences", nil,
				false, now, actorID, now, actorID, nil, nil, nil,
			).
			WillReturnRows(rows)

		got, err := s.Insert(context.Background(), domain.KindDepartment, rec)
		if err != nil {
			t.Fatalf("Insert() unexpected error: %v", err)
		}
		if got.ID != depID {
			t.Errorf("Insert() id = %v, want %v", got.ID, depID)
		}
		if got.CreatedBy != actorID {
			t.Errorf("Insert() created_by = %v, want %v", got.CreatedBy, actorID)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("unique violation maps to constraint error", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		mock.ExpectQuery(`INSERT INTO departments`).
			WithArgs(
				depID, "Sciences", nil,
				false, now, actorID, now, actorID, nil, nil, nil,
			).
			WillReturnError(&pgconn.PgError{
				Code:           "23505",
				ConstraintName: "uq_departments_name",
			})

		_, err := s.Insert(context.Background(), domain.KindDepartment, rec)

		var cerr *store.ConstraintError
		if !errors.As(err, &cerr) {
			t.Fatalf("Insert() error = %v, want *store.ConstraintError", err)
		}
		if cerr.Kind != store.ConstraintUnique {
			t.Errorf("Insert() constraint kind = %v, want unique", cerr.Kind)
		}
		if cerr.Constraint != "uq_departments_name" {
			t.Errorf("Insert() constraint = %q, want %q", cerr.Constraint, "uq_departments_name")
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestStore_Update(t *testing.T) {
	depID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	rec := &domain.Record{
		ID:             depID,
		Kind:           domain.KindDepartment,
		Attrs:          map[string]any{"name": "Arts"},
		LastModifiedAt: now,
		LastModifiedBy: actorID,
	}

	t.Run("successful update", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		rows := pgxmock.NewRows(departmentColumns).
			AddRow(departmentRow(depID, actorID, "Arts", now)...)
		mock.ExpectQuery(`UPDATE departments`).
			WithArgs("Arts", nil, now, actorID, depID, false).
			WillReturnRows(rows)

		got, err := s.Update(context.Background(), domain.KindDepartment, depID, rec)
		if err != nil {
			t.Fatalf("Update() unexpected error: %v", err)
		}
		if got.StringAttr("name") != "Arts" {
			t.Errorf("Update() name = %q, want %q", got.StringAttr("name"), "Arts")
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		mock.ExpectQuery(`UPDATE departments`).
			WithArgs("Arts", nil, now, actorID, depID, false).
			WillReturnRows(pgxmock.NewRows(departmentColumns))

		_, err := s.Update(context.Background(), domain.KindDepartment, depID, rec)
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestStore_MarkArchived(t *testing.T) {
	depID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	t.Run("archives an active record", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		reason := "merged into Sciences"
		rows := pgxmock.NewRows(departmentColumns).
			AddRow(depID, "Arts", nil, true, now, actorID, now, actorID, now, actorID, reason)
		mock.ExpectQuery(`UPDATE departments`).
			WithArgs(
				true, pgxmock.AnyArg(), actorID, reason,
				pgxmock.AnyArg(), actorID, depID, false,
			).
			WillReturnRows(rows)

		got, err := s.MarkArchived(context.Background(), domain.KindDepartment, depID, actorID, reason)
		if err != nil {
			t.Fatalf("MarkArchived() unexpected error: %v", err)
		}
		if !got.IsArchived {
			t.Error("MarkArchived() record not archived")
		}
		if got.ArchiveReason == nil || *got.ArchiveReason != reason {
			t.Errorf("MarkArchived() reason = %v, want %q", got.ArchiveReason, reason)
		}
		if got.ArchivedBy == nil || *got.ArchivedBy != actorID {
			t.Errorf("MarkArchived() archived_by = %v, want %v", got.ArchivedBy, actorID)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("already archived is a no-op", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		reason := "duplicate"
		mock.ExpectQuery(`UPDATE departments`).
			WithArgs(
				true, pgxmock.AnyArg(), actorID, reason,
				pgxmock.AnyArg(), actorID, depID, false,
			).
			WillReturnRows(pgxmock.NewRows(departmentColumns))

		prior := "original reason"
		rows := pgxmock.NewRows(departmentColumns).
			AddRow(depID, "Arts", nil, true, now, actorID, now, actorID, now, actorID, prior)
		mock.ExpectQuery(`SELECT .+ FROM departments`).
			WithArgs(depID, true).
			WillReturnRows(rows)

		got, err := s.MarkArchived(context.Background(), domain.KindDepartment, depID, actorID, reason)
		if err != nil {
			t.Fatalf("MarkArchived() unexpected error: %v", err)
		}
		if got.ArchiveReason == nil || *got.ArchiveReason != prior {
			t.Errorf("MarkArchived() reason = %v, want original %q preserved", got.ArchiveReason, prior)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("missing record maps to not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		mock.ExpectQuery(`UPDATE departments`).
			WithArgs(
				true, pgxmock.AnyArg(), actorID, nil,
				pgxmock.AnyArg(), actorID, depID, false,
			).
			WillReturnRows(pgxmock.NewRows(departmentColumns))
		mock.ExpectQuery(`SELECT .+ FROM departments`).
			WithArgs(depID, true).
			WillReturnRows(pgxmock.NewRows(departmentColumns))

		_, err := s.MarkArchived(context.Background(), domain.KindDepartment, depID, actorID, "")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("MarkArchived() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestStore_Restore(t *testing.T) {
	depID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	t.Run("restores an archived record", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		rows := pgxmock.NewRows(departmentColumns).
			AddRow(departmentRow(depID, actorID, "Arts", now)...)
		mock.ExpectQuery(`UPDATE departments`).
			WithArgs(false, nil, nil, nil, depID, true).
			WillReturnRows(rows)

		got, err := s.Restore(context.Background(), domain.KindDepartment, depID)
		if err != nil {
			t.Fatalf("Restore() unexpected error: %v", err)
		}
		if got.IsArchived {
			t.Error("Restore() record still archived")
		}
		if got.ArchivedAt != nil || got.ArchivedBy != nil || got.ArchiveReason != nil {
			t.Error("Restore() archive fields not cleared")
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("already active is a no-op", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		mock.ExpectQuery(`UPDATE departments`).
			WithArgs(false, nil, nil, nil, depID, true).
			WillReturnRows(pgxmock.NewRows(departmentColumns))

		rows := pgxmock.NewRows(departmentColumns).
			AddRow(departmentRow(depID, actorID, "Arts", now)...)
		mock.ExpectQuery(`SELECT .+ FROM departments`).
			WithArgs(depID, false).
			WillReturnRows(rows)

		got, err := s.Restore(context.Background(), domain.KindDepartment, depID)
		if err != nil {
			t.Fatalf("Restore() unexpected error: %v", err)
		}
		if got.IsArchived {
			t.Error("Restore() record archived after no-op restore")
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestStore_HardDelete(t *testing.T) {
	depID := uuid.New()

	t.Run("deletes an archived record", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		mock.ExpectExec(`DELETE FROM departments`).
			WithArgs(depID, true).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		if err := s.HardDeleteArchived(context.Background(), domain.KindDepartment, depID); err != nil {
			t.Errorf("HardDeleteArchived() unexpected error: %v", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("zero rows maps to not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		mock.ExpectExec(`DELETE FROM departments`).
			WithArgs(depID, false).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := s.HardDeleteActive(context.Background(), domain.KindDepartment, depID)
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("HardDeleteActive() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("foreign key violation maps to constraint error", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		mock.ExpectExec(`DELETE FROM departments`).
			WithArgs(depID, true).
			WillReturnError(&pgconn.PgError{
				Code:           "23503",
				ConstraintName: "fk_subjects_department_id",
			})

		err := s.HardDeleteArchived(context.Background(), domain.KindDepartment, depID)

		var cerr *store.ConstraintError
		if !errors.As(err, &cerr) {
			t.Fatalf("HardDeleteArchived() error = %v, want *store.ConstraintError", err)
		}
		if cerr.Kind != store.ConstraintForeign {
			t.Errorf("HardDeleteArchived() constraint kind = %v, want foreign", cerr.Kind)
		}
		if cerr.Operation != "delete" {
			t.Errorf("HardDeleteArchived() operation = %q, want %q", cerr.Operation, "delete")
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestStore_Query(t *testing.T) {
	depID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		spec    domain.QuerySpec
		setup   func(mock pgxmock.PgxPoolIface)
		wantLen int
	}{
		{
			name: "contains filter uses case-insensitive match",
			spec: domain.QuerySpec{
				Contains: map[string]string{"name": "sci"},
				OrderBy:  "name",
				OrderDir: domain.SortAsc,
				Limit:    domain.DefaultLimit,
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(departmentColumns).
					AddRow(departmentRow(depID, actorID, "Sciences", now)...)
				mock.ExpectQuery(`SELECT .+ FROM departments WHERE .*ILIKE`).
					WithArgs(false, "%sci%").
					WillReturnRows(rows)
			},
			wantLen: 1,
		},
		{
			name: "no matches returns empty slice",
			spec: domain.QuerySpec{
				Equals:   map[string]any{"name": "Astronomy"},
				OrderBy:  "name",
				OrderDir: domain.SortAsc,
				Limit:    domain.DefaultLimit,
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM departments`).
					WithArgs(false, "Astronomy").
					WillReturnRows(pgxmock.NewRows(departmentColumns))
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			s := New(querier, catalog.Default())
			tt.setup(mock)

			got, err := s.Query(context.Background(), domain.KindDepartment, tt.spec)
			if err != nil {
				t.Fatalf("Query() unexpected error: %v", err)
			}
			if got == nil {
				t.Fatal("Query() returned nil slice")
			}
			if len(got) != tt.wantLen {
				t.Errorf("Query() returned %d records, want %d", len(got), tt.wantLen)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestStore_CountDependents(t *testing.T) {
	depID := uuid.New()

	meta, err := catalog.Default().MetadataFor(domain.KindDepartment)
	if err != nil {
		t.Fatalf("MetadataFor() unexpected error: %v", err)
	}
	var subjectsEdge catalog.DependencyEdge
	for _, edge := range meta.Dependencies {
		if edge.Relation == "subjects" {
			subjectsEdge = edge
		}
	}

	t.Run("counts only active dependents", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		rows := pgxmock.NewRows([]string{"count"}).AddRow(int64(3))
		mock.ExpectQuery(`SELECT count\(\*\) FROM subjects`).
			WithArgs(depID, false).
			WillReturnRows(rows)

		count, err := s.CountDependents(context.Background(), subjectsEdge, depID, true)
		if err != nil {
			t.Fatalf("CountDependents() unexpected error: %v", err)
		}
		if count != 3 {
			t.Errorf("CountDependents() = %d, want 3", count)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("counts archived rows too when asked", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		s := New(querier, catalog.Default())

		rows := pgxmock.NewRows([]string{"count"}).AddRow(int64(5))
		mock.ExpectQuery(`SELECT count\(\*\) FROM subjects`).
			WithArgs(depID).
			WillReturnRows(rows)

		count, err := s.CountDependents(context.Background(), subjectsEdge, depID, false)
		if err != nil {
			t.Fatalf("CountDependents() unexpected error: %v", err)
		}
		if count != 5 {
			t.Errorf("CountDependents() = %d, want 5", count)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

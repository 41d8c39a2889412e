package lifecycle

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

var _ store.Store = &storeMock{}

type storeMock struct {
	InsertFunc            func(ctx context.Context, kind domain.Kind, rec *domain.Record) (*domain.Record, error)
	GetActiveFunc         func(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	GetArchivedFunc       func(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	ExistsActiveFunc      func(ctx context.Context, kind domain.Kind, id uuid.UUID) (bool, error)
	QueryFunc             func(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error)
	QueryArchivedFunc     func(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error)
	UpdateFunc            func(ctx context.Context, kind domain.Kind, id uuid.UUID, rec *domain.Record) (*domain.Record, error)
	MarkArchivedFunc      func(ctx context.Context, kind domain.Kind, id uuid.UUID, actor uuid.UUID, reason string) (*domain.Record, error)
	RestoreFunc           func(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	HardDeleteActiveFunc  func(ctx context.Context, kind domain.Kind, id uuid.UUID) error
	HardDeleteArchivedFunc func(ctx context.Context, kind domain.Kind, id uuid.UUID) error
	CountDependentsFunc   func(ctx context.Context, edge catalog.DependencyEdge, targetID uuid.UUID, onlyActive bool) (int64, error)

	calls struct {
		Insert             []struct {
			Kind domain.Kind
			Rec  *domain.Record
		}
		GetActive          []struct{ ID uuid.UUID }
		GetArchived        []struct{ ID uuid.UUID }
		Query              []struct{ Spec domain.QuerySpec }
		QueryArchived      []struct{ Spec domain.QuerySpec }
		Update             []struct{ Rec *domain.Record }
		MarkArchived       []struct {
			Actor  uuid.UUID
			Reason string
		}
		Restore            []struct{ ID uuid.UUID }
		HardDeleteActive   []struct{ ID uuid.UUID }
		HardDeleteArchived []struct{ ID uuid.UUID }
		CountDependents    []struct{ Edge catalog.DependencyEdge }
	}
	mu sync.Mutex
}

func (m *storeMock) Insert(ctx context.Context, kind domain.Kind, rec *domain.Record) (*domain.Record, error) {
	if m.InsertFunc == nil {
		panic("storeMock.InsertFunc: method is nil but Store.Insert was just called")
	}
	m.mu.Lock()
	m.calls.Insert = append(m.calls.Insert, struct {
		Kind domain.Kind
		Rec  *domain.Record
	}{kind, rec})
	m.mu.Unlock()
	return m.InsertFunc(ctx, kind, rec)
}

func (m *storeMock) InsertCalls() []struct {
	Kind domain.Kind
	Rec  *domain.Record
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Insert
}

func (m *storeMock) GetActive(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	if m.GetActiveFunc == nil {
		panic("storeMock.GetActiveFunc: method is nil but Store.GetActive was just called")
	}
	m.mu.Lock()
	m.calls.GetActive = append(m.calls.GetActive, struct{ ID uuid.UUID }{id})
	m.mu.Unlock()
	return m.GetActiveFunc(ctx, kind, id)
}

func (m *storeMock) GetActiveCalls() []struct{ ID uuid.UUID } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.GetActive
}

func (m *storeMock) GetArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	if m.GetArchivedFunc == nil {
		panic("storeMock.GetArchivedFunc: method is nil but Store.GetArchived was just called")
	}
	m.mu.Lock()
	m.calls.GetArchived = append(m.calls.GetArchived, struct{ ID uuid.UUID }{id})
	m.mu.Unlock()
	return m.GetArchivedFunc(ctx, kind, id)
}

func (m *storeMock) GetArchivedCalls() []struct{ ID uuid.UUID } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.GetArchived
}

func (m *storeMock) ExistsActive(ctx context.Context, kind domain.Kind, id uuid.UUID) (bool, error) {
	if m.ExistsActiveFunc == nil {
		panic("storeMock.ExistsActiveFunc: method is nil but Store.ExistsActive was just called")
	}
	return m.ExistsActiveFunc(ctx, kind, id)
}

func (m *storeMock) Query(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
	if m.QueryFunc == nil {
		panic("storeMock.QueryFunc: method is nil but Store.Query was just called")
	}
	m.mu.Lock()
	m.calls.Query = append(m.calls.Query, struct{ Spec domain.QuerySpec }{spec})
	m.mu.Unlock()
	return m.QueryFunc(ctx, kind, spec)
}

func (m *storeMock) QueryCalls() []struct{ Spec domain.QuerySpec } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Query
}

func (m *storeMock) QueryArchived(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
	if m.QueryArchivedFunc == nil {
		panic("storeMock.QueryArchivedFunc: method is nil but Store.QueryArchived was just called")
	}
	m.mu.Lock()
	m.calls.QueryArchived = append(m.calls.QueryArchived, struct{ Spec domain.QuerySpec }{spec})
	m.mu.Unlock()
	return m.QueryArchivedFunc(ctx, kind, spec)
}

func (m *storeMock) QueryArchivedCalls() []struct{ Spec domain.QuerySpec } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.QueryArchived
}

func (m *storeMock) Update(ctx context.Context, kind domain.Kind, id uuid.UUID, rec *domain.Record) (*domain.Record, error) {
	if m.UpdateFunc == nil {
		panic("storeMock.UpdateFunc: method is nil but Store.Update was just called")
	}
	m.mu.Lock()
	m.calls.Update = append(m.calls.Update, struct{ Rec *domain.Record }{rec})
	m.mu.Unlock()
	return m.UpdateFunc(ctx, kind, id, rec)
}

func (m *storeMock) UpdateCalls() []struct{ Rec *domain.Record } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Update
}

func (m *storeMock) MarkArchived(ctx context.Context, kind domain.Kind, id uuid.UUID, actor uuid.UUID, reason string) (*domain.Record, error) {
	if m.MarkArchivedFunc == nil {
		panic("storeMock.MarkArchivedFunc: method is nil but Store.MarkArchived was just called")
	}
	m.mu.Lock()
	m.calls.MarkArchived = append(m.calls.MarkArchived, struct {
		Actor  uuid.UUID
		Reason string
	}{actor, reason})
	m.mu.Unlock()
	return m.MarkArchivedFunc(ctx, kind, id, actor, reason)
}

func (m *storeMock) MarkArchivedCalls() []struct {
	Actor  uuid.UUID
	Reason string
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.MarkArchived
}

func (m *storeMock) Restore(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	if m.RestoreFunc == nil {
		panic("storeMock.RestoreFunc: method is nil but Store.Restore was just called")
	}
	m.mu.Lock()
	m.calls.Restore = append(m.calls.Restore, struct{ ID uuid.UUID }{id})
	m.mu.Unlock()
	return m.RestoreFunc(ctx, kind, id)
}

func (m *storeMock) RestoreCalls() []struct{ ID uuid.UUID } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Restore
}

func (m *storeMock) HardDeleteActive(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	if m.HardDeleteActiveFunc == nil {
		panic("storeMock.HardDeleteActiveFunc: method is nil but Store.HardDeleteActive was just called")
	}
	m.mu.Lock()
	m.calls.HardDeleteActive = append(m.calls.HardDeleteActive, struct{ ID uuid.UUID }{id})
	m.mu.Unlock()
	return m.HardDeleteActiveFunc(ctx, kind, id)
}

func (m *storeMock) HardDeleteActiveCalls() []struct{ ID uuid.UUID } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.HardDeleteActive
}

func (m *storeMock) HardDeleteArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	if m.HardDeleteArchivedFunc == nil {
		panic("storeMock.HardDeleteArchivedFunc: method is nil but Store.HardDeleteArchived was just called")
	}
	m.mu.Lock()
	m.calls.HardDeleteArchived = append(m.calls.HardDeleteArchived, struct{ ID uuid.UUID }{id})
	m.mu.Unlock()
	return m.HardDeleteArchivedFunc(ctx, kind, id)
}

func (m *storeMock) HardDeleteArchivedCalls() []struct{ ID uuid.UUID } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.HardDeleteArchived
}

func (m *storeMock) CountDependents(ctx context.Context, edge catalog.DependencyEdge, targetID uuid.UUID, onlyActive bool) (int64, error) {
	if m.CountDependentsFunc == nil {
		panic("storeMock.CountDependentsFunc: method is nil but Store.CountDependents was just called")
	}
	m.mu.Lock()
	m.calls.CountDependents = append(m.calls.CountDependents, struct{ Edge catalog.DependencyEdge }{edge})
	m.mu.Unlock()
	return m.CountDependentsFunc(ctx, edge, targetID, onlyActive)
}

func (m *storeMock) CountDependentsCalls() []struct{ Edge catalog.DependencyEdge } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.CountDependents
}

var _ auditLogger = &auditLoggerMock{}

type auditLoggerMock struct {
	AppendFunc func(ctx context.Context, rec domain.AuditRecord) error

	calls struct {
		Append []struct{ Rec domain.AuditRecord }
	}
	mu sync.Mutex
}

func (m *auditLoggerMock) Append(ctx context.Context, rec domain.AuditRecord) error {
	if m.AppendFunc == nil {
		panic("auditLoggerMock.AppendFunc: method is nil but auditLogger.Append was just called")
	}
	m.mu.Lock()
	m.calls.Append = append(m.calls.Append, struct{ Rec domain.AuditRecord }{rec})
	m.mu.Unlock()
	return m.AppendFunc(ctx, rec)
}

func (m *auditLoggerMock) AppendCalls() []struct{ Rec domain.AuditRecord } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Append
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	return m.RunInTxFunc(ctx, fn)
}

var _ translator = &translatorMock{}

type translatorMock struct {
	TranslateFunc func(kind domain.Kind, violation *store.ConstraintError, input map[string]any) error

	calls struct {
		Translate []struct {
			Kind      domain.Kind
			Violation *store.ConstraintError
		}
	}
	mu sync.Mutex
}

func (m *translatorMock) Translate(kind domain.Kind, violation *store.ConstraintError, input map[string]any) error {
	if m.TranslateFunc == nil {
		panic("translatorMock.TranslateFunc: method is nil but translator.Translate was just called")
	}
	m.mu.Lock()
	m.calls.Translate = append(m.calls.Translate, struct {
		Kind      domain.Kind
		Violation *store.ConstraintError
	}{kind, violation})
	m.mu.Unlock()
	return m.TranslateFunc(kind, violation, input)
}

func (m *translatorMock) TranslateCalls() []struct {
	Kind      domain.Kind
	Violation *store.ConstraintError
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Translate
}

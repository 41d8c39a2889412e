package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/export"
	"github.com/ayodelan/schoolbase-backend/internal/export/render"
	"github.com/ayodelan/schoolbase-backend/internal/transport/middleware"
)

// lifecycleEngine is the subset of the lifecycle engine the handler calls.
type lifecycleEngine interface {
	Create(ctx context.Context, kind domain.Kind, attrs map[string]any) (*domain.Record, error)
	Update(ctx context.Context, kind domain.Kind, id uuid.UUID, attrs map[string]any) (*domain.Record, error)
	Archive(ctx context.Context, kind domain.Kind, id uuid.UUID, reason string) (*domain.Record, error)
	Restore(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	HardDelete(ctx context.Context, kind domain.Kind, id uuid.UUID) error
	Get(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	GetArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)
	List(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error)
	ListArchived(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error)
}

type exportGatherer interface {
	Gather(ctx context.Context, kind domain.Kind, id uuid.UUID) (*export.Snapshot, string, error)
}

type auditReader interface {
	ListByEntity(ctx context.Context, kind domain.Kind, entityID uuid.UUID, limit, offset int) ([]domain.AuditRecord, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]domain.AuditRecord, error)
}

// EntityHandler serves the generic entity routes. One handler covers every
// kind; the path segment selects the kind via its storage name.
type EntityHandler struct {
	log      *slog.Logger
	cat      *catalog.Catalog
	engine   lifecycleEngine
	gatherer exportGatherer
	audit    auditReader
}

// NewEntityHandler creates an EntityHandler.
func NewEntityHandler(logger *slog.Logger, cat *catalog.Catalog, engine lifecycleEngine, gatherer exportGatherer, audit auditReader) *EntityHandler {
	return &EntityHandler{
		log:      logger.With("handler", "entity"),
		cat:      cat,
		engine:   engine,
		gatherer: gatherer,
		audit:    audit,
	}
}

func (h *EntityHandler) kindFromPath(r *http.Request) (domain.Kind, bool) {
	return h.cat.KindByStorageName(r.PathValue("entity"))
}

func idFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Errors: []domain.FieldError{
			{Field: "id", Message: "must be a valid UUID"},
		}}
	}
	return id, nil
}

// Create handles POST /api/v1/{entity}. The body is a flat JSON object of
// kind-specific attributes.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	var attrs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	rec, err := h.engine.Create(ctx, kind, attrs)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordJSON(rec))
}

// Get handles GET /api/v1/{entity}/{id}.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, h.engine.Get)
}

// GetArchived handles GET /api/v1/{entity}/archived/{id}.
func (h *EntityHandler) GetArchived(w http.ResponseWriter, r *http.Request) {
	h.getOne(w, r, h.engine.GetArchived)
}

func (h *EntityHandler) getOne(w http.ResponseWriter, r *http.Request, get func(context.Context, domain.Kind, uuid.UUID) (*domain.Record, error)) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	rec, err := get(ctx, kind, id)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordJSON(rec))
}

// List handles GET /api/v1/{entity}.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.engine.List)
}

// ListArchived handles GET /api/v1/{entity}/archived.
func (h *EntityHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.engine.ListArchived)
}

func (h *EntityHandler) list(w http.ResponseWriter, r *http.Request, list func(context.Context, domain.Kind, domain.QuerySpec) ([]*domain.Record, error)) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	spec, err := parseQuerySpec(r.URL.Query())
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	recs, err := list(ctx, kind, spec)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	items := make([]map[string]any, len(recs))
	for i, rec := range recs {
		items[i] = recordJSON(rec)
	}

	writeJSON(w, http.StatusOK, listResponse{
		Items:  items,
		Limit:  spec.Limit,
		Offset: spec.Offset,
	})
}

type listResponse struct {
	Items  []map[string]any `json:"items"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// Update handles PATCH /api/v1/{entity}/{id}. Only the attributes present in
// the body change.
func (h *EntityHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	var attrs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	rec, err := h.engine.Update(ctx, kind, id, attrs)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordJSON(rec))
}

type archiveRequest struct {
	Reason string `json:"reason"`
}

// Archive handles POST /api/v1/{entity}/{id}/archive.
func (h *EntityHandler) Archive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	rec, err := h.engine.Archive(ctx, kind, id, req.Reason)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordJSON(rec))
}

// Restore handles POST /api/v1/{entity}/{id}/restore.
func (h *EntityHandler) Restore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	rec, err := h.engine.Restore(ctx, kind, id)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordJSON(rec))
}

// Delete handles DELETE /api/v1/{entity}/{id}. Hard deletion is admin-only.
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := middleware.RequireAdmin(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	if err := h.engine.HardDelete(ctx, kind, id); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/{entity}/{id}/export?format=csv|xlsx.
func (h *EntityHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	format := render.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = render.FormatCSV
	}
	contentType, ok := render.ContentType(format)
	if !ok {
		respondError(ctx, h.log, w, &domain.ValidationError{Errors: []domain.FieldError{
			{Field: "format", Message: "must be csv or xlsx"},
		}})
		return
	}

	snap, stem, err := h.gatherer.Gather(ctx, kind, id)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stem+"."+string(format)))

	switch format {
	case render.FormatXLSX:
		err = render.XLSX(w, snap)
	default:
		err = render.CSV(w, snap)
	}
	if err != nil {
		// Headers are already out; all that is left is to log.
		h.log.ErrorContext(ctx, "render export", slog.Any("error", err))
	}
}

type auditEntryJSON struct {
	ID        string         `json:"id"`
	ActorID   string         `json:"actor_id"`
	Kind      string         `json:"kind,omitempty"`
	EntityID  string         `json:"entity_id,omitempty"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt string         `json:"created_at"`
}

func auditItems(entries []domain.AuditRecord) []auditEntryJSON {
	items := make([]auditEntryJSON, len(entries))
	for i, e := range entries {
		items[i] = auditEntryJSON{
			ID:        e.ID.String(),
			ActorID:   e.ActorID.String(),
			Kind:      string(e.Kind),
			Action:    e.Action.String(),
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if e.EntityID != nil {
			items[i].EntityID = e.EntityID.String()
		}
	}
	return items
}

// AuditTrail handles GET /api/v1/{entity}/{id}/audit.
func (h *EntityHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	kind, ok := h.kindFromPath(r)
	if !ok {
		respondError(ctx, h.log, w, domain.ErrUnknownKind)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	limit := intParam(r.URL.Query(), "limit", domain.DefaultLimit)
	if limit <= 0 || limit > domain.MaxLimit {
		limit = domain.DefaultLimit
	}
	offset := intParam(r.URL.Query(), "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.audit.ListByEntity(ctx, kind, id, limit, offset)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": auditItems(entries)})
}

// ActorActivity handles GET /api/v1/staff_members/{id}/activity: everything
// one staff member has done, newest first.
func (h *EntityHandler) ActorActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.RequireActor(ctx); err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	id, err := idFromPath(r)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	limit := intParam(r.URL.Query(), "limit", domain.DefaultLimit)
	if limit <= 0 || limit > domain.MaxLimit {
		limit = domain.DefaultLimit
	}
	offset := intParam(r.URL.Query(), "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.audit.ListByActor(ctx, id, limit, offset)
	if err != nil {
		respondError(ctx, h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": auditItems(entries)})
}

// reservedParams are query keys that never act as attribute filters.
var reservedParams = map[string]bool{
	"full_name": true,
	"order_by":  true,
	"order_dir": true,
	"limit":     true,
	"offset":    true,
	"format":    true,
}

// parseQuerySpec maps URL query parameters onto a QuerySpec. Plain keys are
// equality filters; keys with a "_like" suffix are substring filters. The
// engine validates attribute names against the catalog.
func parseQuerySpec(values url.Values) (domain.QuerySpec, error) {
	spec := domain.QuerySpec{
		FullName: strings.TrimSpace(values.Get("full_name")),
		OrderBy:  values.Get("order_by"),
		OrderDir: values.Get("order_dir"),
		Limit:    intParam(values, "limit", 0),
		Offset:   intParam(values, "offset", 0),
	}

	if dir := spec.OrderDir; dir != "" && dir != domain.SortAsc && dir != domain.SortDesc {
		return domain.QuerySpec{}, &domain.ValidationError{Errors: []domain.FieldError{
			{Field: "order_dir", Message: "must be asc or desc"},
		}}
	}

	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		if attr, ok := strings.CutSuffix(key, "_like"); ok && attr != "" {
			if spec.Contains == nil {
				spec.Contains = make(map[string]string)
			}
			spec.Contains[attr] = vals[0]
			continue
		}
		if spec.Equals == nil {
			spec.Equals = make(map[string]any)
		}
		spec.Equals[key] = vals[0]
	}

	return spec, nil
}

func intParam(values url.Values, key string, fallback int) int {
	raw := values.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// recordJSON flattens a record into one JSON object: the envelope fields
// plus the kind-specific attributes at the top level.
func recordJSON(rec *domain.Record) map[string]any {
	out := make(map[string]any, len(rec.Attrs)+8)
	for k, v := range rec.Attrs {
		out[k] = v
	}
	out["id"] = rec.ID
	out["created_at"] = rec.CreatedAt
	out["created_by"] = rec.CreatedBy
	out["last_modified_at"] = rec.LastModifiedAt
	out["last_modified_by"] = rec.LastModifiedBy
	out["is_archived"] = rec.IsArchived
	if rec.IsArchived {
		out["archived_at"] = rec.ArchivedAt
		out["archived_by"] = rec.ArchivedBy
		out["archive_reason"] = rec.ArchiveReason
	}
	return out
}

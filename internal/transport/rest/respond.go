package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/pkg/ctxutil"
)

// errorBody is the JSON error envelope every non-2xx response carries.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Fields   []fieldError `json:"fields,omitempty"`
	Blocking []string     `json:"blocking,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldErrors(errs []domain.FieldError) []fieldError {
	out := make([]fieldError, len(errs))
	for i, e := range errs {
		out[i] = fieldError{Field: e.Field, Message: e.Message}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respondError maps domain errors onto HTTP statuses. Typed errors are
// matched before their sentinels so a related-record miss on create is not
// confused with a missing target.
func respondError(ctx context.Context, log *slog.Logger, w http.ResponseWriter, err error) {
	var (
		verr *domain.ValidationError
		rerr *domain.RelatedNotFoundError
		derr *domain.DuplicateError
		berr *domain.ArchiveBlockedError
		uerr *domain.InUseError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "VALIDATION",
			Message: "validation failed",
			Fields:  fieldErrors(verr.Errors),
		}})

	case errors.As(err, &rerr):
		writeError(w, http.StatusUnprocessableEntity, "RELATED_NOT_FOUND", rerr.Error())

	case errors.As(err, &derr):
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", derr.Error())

	case errors.As(err, &berr):
		writeJSON(w, http.StatusConflict, errorBody{Error: errorDetail{
			Code:     "ARCHIVE_BLOCKED",
			Message:  berr.Error(),
			Blocking: berr.Blocking,
		}})

	case errors.As(err, &uerr):
		writeJSON(w, http.StatusConflict, errorBody{Error: errorDetail{
			Code:     "IN_USE",
			Message:  uerr.Error(),
			Blocking: uerr.Blocking,
		}})

	case errors.Is(err, domain.ErrUnknownKind):
		writeError(w, http.StatusNotFound, "UNKNOWN_KIND", "unknown entity kind")

	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())

	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthorized")

	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "forbidden")

	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "service unavailable")

	default:
		log.ErrorContext(ctx, "unexpected error",
			slog.Any("error", err),
			slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/internal/validation"
	"github.com/google/uuid"
)

var errServiceUnavailable = errors.New("http: service not configured")

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

// readBody validates the request body against schema and decodes it into
// target. An empty body is treated as an empty object.
func (api *AdminAPI) readBody(w http.ResponseWriter, r *http.Request, schema string, target any) error {
	if r == nil || r.Body == nil {
		return validation.Validate(schema, []byte("{}"))
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, api.maxBody))
	if err != nil {
		return errors.Join(validation.ErrMalformedPayload, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if err := validation.Validate(schema, raw); err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return errors.Join(validation.ErrMalformedPayload, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var notFound *content.NotFoundError
	if errors.As(err, &notFound) || errors.Is(err, lifecycle.ErrNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
		}
	}

	if errors.Is(err, lifecycle.ErrStaleVersion) || errors.Is(err, content.ErrVersionConflict) {
		return http.StatusConflict, errorResponse{
			Error:   "stale_version",
			Message: err.Error(),
		}
	}

	if errors.Is(err, lifecycle.ErrInvalidTransition) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "invalid_transition",
			Message: err.Error(),
		}
	}

	if errors.Is(err, lifecycle.ErrPastDateRejected) || errors.Is(err, bulk.ErrPastScheduledAt) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "past_date",
			Message: err.Error(),
		}
	}

	if errors.Is(err, validation.ErrSchemaValidation) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  validation.Issues(err),
		}
	}

	if errors.Is(err, bulk.ErrInvalidRequest) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		}
	}

	if errors.Is(err, validation.ErrMalformedPayload) ||
		errors.Is(err, domain.ErrUnknownKind) ||
		errors.Is(err, lifecycle.ErrUnknownAction) ||
		errors.Is(err, lifecycle.ErrMissingScheduledAt) ||
		errors.Is(err, lifecycle.ErrNilItemID) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		}
	}

	if errors.Is(err, errServiceUnavailable) {
		return http.StatusNotImplemented, errorResponse{
			Error:   "not_configured",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, err
	}
	return parsed, nil
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/internal/validation"
)

type transitionPayload struct {
	Action      string     `json:"action"`
	Version     int64      `json:"version"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type repairPayload struct {
	Strategy    string     `json:"strategy"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (api *AdminAPI) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if api.items == nil {
		writeError(w, errServiceUnavailable)
		return
	}
	id, err := parseUUID(chi.URLParam(r, "ref"))
	if err != nil {
		badRequest(w, "invalid item id")
		return
	}
	item, err := api.items.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (api *AdminAPI) handleTransition(w http.ResponseWriter, r *http.Request) {
	if api.items == nil {
		writeError(w, errServiceUnavailable)
		return
	}
	id, err := parseUUID(chi.URLParam(r, "ref"))
	if err != nil {
		badRequest(w, "invalid item id")
		return
	}
	var payload transitionPayload
	if err := api.readBody(w, r, validation.SchemaTransition, &payload); err != nil {
		writeError(w, err)
		return
	}
	action, err := lifecycle.ParseAction(payload.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := api.items.Transition(r.Context(), lifecycle.TransitionRequest{
		ItemID:          id,
		Action:          action,
		ExpectedVersion: payload.Version,
		ScheduledAt:     payload.ScheduledAt,
	})
	if err != nil {
		api.logger.Warn("http.transition.failed", "item_id", id, "action", action, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (api *AdminAPI) handleAudit(w http.ResponseWriter, r *http.Request) {
	if api.audits == nil {
		writeError(w, errServiceUnavailable)
		return
	}
	kind, err := domain.ParseKind(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := api.audits.AuditInvariants(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (api *AdminAPI) handleRepair(w http.ResponseWriter, r *http.Request) {
	if api.bulk == nil {
		writeError(w, errServiceUnavailable)
		return
	}
	kind, err := domain.ParseKind(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	var payload repairPayload
	if err := api.readBody(w, r, validation.SchemaRepair, &payload); err != nil {
		writeError(w, err)
		return
	}
	strategy, err := bulk.ParseStrategy(payload.Strategy)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := api.bulk.RepairOrphans(r.Context(), kind, strategy, payload.ScheduledAt)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if result.Result.Partial() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

package http

import (
	"net/http"
	"time"

	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/validation"
	"github.com/google/uuid"
)

type sweepPayload struct {
	Kind *string `json:"kind"`
}

type bulkPayload struct {
	Op     string      `json:"op"`
	IDs    []uuid.UUID `json:"ids"`
	Params struct {
		FolderID    *uuid.UUID `json:"folder_id"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	} `json:"params"`
}

func (api *AdminAPI) handleSweep(w http.ResponseWriter, r *http.Request) {
	if api.sweeps == nil {
		writeError(w, errServiceUnavailable)
		return
	}
	var payload sweepPayload
	if err := api.readBody(w, r, validation.SchemaSweep, &payload); err != nil {
		writeError(w, err)
		return
	}
	var kind *domain.Kind
	if payload.Kind != nil {
		parsed, err := domain.ParseKind(*payload.Kind)
		if err != nil {
			writeError(w, err)
			return
		}
		kind = &parsed
	}

	report, err := api.sweeps.RunSweep(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (api *AdminAPI) handleBulk(w http.ResponseWriter, r *http.Request) {
	if api.bulk == nil {
		writeError(w, errServiceUnavailable)
		return
	}
	var payload bulkPayload
	if err := api.readBody(w, r, validation.SchemaBulk, &payload); err != nil {
		writeError(w, err)
		return
	}
	op, err := bulk.ParseOp(payload.Op)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := api.bulk.BulkMutate(r.Context(), bulk.Request{
		Op:  op,
		IDs: payload.IDs,
		Params: bulk.Params{
			FolderID:    payload.Params.FolderID,
			ScheduledAt: payload.Params.ScheduledAt,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if result.Partial() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

package bulk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Op names a bulk operation.
type Op string

const (
	OpMoveToFolder Op = "move_to_folder"
	OpDelete       Op = "delete"
	OpDraft        Op = "draft"
	OpPublishNow   Op = "publish_now"
	OpSchedule     Op = "schedule"
)

// Ops lists every supported operation.
func Ops() []Op {
	return []Op{OpMoveToFolder, OpDelete, OpDraft, OpPublishNow, OpSchedule}
}

var opAliases = map[string]Op{
	"move":      OpMoveToFolder,
	"to_draft":  OpDraft,
	"unpublish": OpDraft,
	"publish":   OpPublishNow,
}

// ParseOp normalises user input into a known operation.
func ParseOp(input string) (Op, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(input)), "-", "_")
	if alias, ok := opAliases[normalized]; ok {
		return alias, nil
	}
	op := Op(normalized)
	if !op.Valid() {
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidRequest, ErrUnknownOp, input)
	}
	return op, nil
}

func (o Op) Valid() bool {
	switch o {
	case OpMoveToFolder, OpDelete, OpDraft, OpPublishNow, OpSchedule:
		return true
	default:
		return false
	}
}

var (
	// ErrInvalidRequest wraps every request level rejection. Nothing has been
	// touched when it is returned.
	ErrInvalidRequest     = errors.New("bulk: invalid request")
	ErrUnknownOp          = errors.New("bulk: unknown operation")
	ErrEmptyIDs           = errors.New("bulk: at least one id is required")
	ErrTooManyItems       = errors.New("bulk: too many ids")
	ErrFolderNotFound     = errors.New("bulk: target folder not found")
	ErrMissingScheduledAt = errors.New("bulk: scheduled_at required")
	ErrPastScheduledAt    = errors.New("bulk: scheduled_at must be in the future")
)

// Params carries operation specific arguments. A nil FolderID with
// move_to_folder moves items to uncategorized.
type Params struct {
	FolderID    *uuid.UUID `json:"folder_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// Request applies Op to every id.
type Request struct {
	Op     Op          `json:"op"`
	IDs    []uuid.UUID `json:"ids"`
	Params Params      `json:"params"`
}

// Reason classifies a per-item failure.
type Reason string

const (
	ReasonNotFound          Reason = "not_found"
	ReasonStaleVersion      Reason = "stale_version"
	ReasonInvalidTransition Reason = "invalid_transition"
	ReasonPastDate          Reason = "past_date"
	ReasonError             Reason = "error"
)

// Failure is one item that could not be processed.
type Failure struct {
	ID      uuid.UUID `json:"id"`
	Reason  Reason    `json:"reason"`
	Message string    `json:"message,omitempty"`
}

// Result lists succeeded and failed ids in request order.
type Result struct {
	Op        Op          `json:"op"`
	Succeeded []uuid.UUID `json:"succeeded"`
	Failed    []Failure   `json:"failed"`
}

// Partial reports whether some items failed.
func (r *Result) Partial() bool {
	return r != nil && len(r.Failed) > 0
}

// FailedIDs returns the ids in Failed.
func (r *Result) FailedIDs() []uuid.UUID {
	if r == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(r.Failed))
	for _, failure := range r.Failed {
		ids = append(ids, failure.ID)
	}
	return ids
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

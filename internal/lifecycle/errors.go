package lifecycle

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-publish/internal/content"
)

var (
	// ErrInvalidTransition indicates the action is not legal from the item's current status.
	ErrInvalidTransition = errors.New("lifecycle: transition not allowed")
	// ErrPastDateRejected indicates a schedule time at or before now.
	ErrPastDateRejected = errors.New("lifecycle: scheduled time must be in the future")
	// ErrStaleVersion indicates the caller's expected version no longer matches the store.
	ErrStaleVersion = errors.New("lifecycle: stale version")
	// ErrNotFound indicates the item does not exist.
	ErrNotFound = errors.New("lifecycle: item not found")
	// ErrMissingScheduledAt indicates a schedule action without a target time.
	ErrMissingScheduledAt = errors.New("lifecycle: scheduled_at required")
	// ErrUnknownAction signals an unrecognised action name.
	ErrUnknownAction = errors.New("lifecycle: unknown action")
	// ErrNilItemID signals input validation failure.
	ErrNilItemID = errors.New("lifecycle: item id required")
)

// mapStoreError translates repository failures into lifecycle sentinels while
// keeping the original error in the chain.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, content.ErrVersionConflict) {
		return fmt.Errorf("%w: %w", ErrStaleVersion, err)
	}
	if content.IsNotFound(err) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

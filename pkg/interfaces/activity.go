package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users activity record, re-exported so publish
// hooks and host applications share one type.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink receives activity records, typically a go-users ActivitySink.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}

package content

import (
	"time"

	"github.com/goliatone/go-publish/internal/domain"
	"github.com/google/uuid"
)

// Optional marks a patch field. Set=false leaves the stored value untouched;
// Set=true with a nil Value clears it.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns an Optional that writes value.
func SetTo[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Value: &value}
}

// Clear returns an Optional that nulls the column.
func Clear[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Patch describes a partial write against an item.
type Patch struct {
	Status      Optional[domain.Status]
	ScheduledAt Optional[Timestamp]
	PublishedAt Optional[time.Time]
	FolderID    Optional[uuid.UUID]
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return !p.Status.Set && !p.ScheduledAt.Set && !p.PublishedAt.Set && !p.FolderID.Set
}

// ApplyTo mutates item in place. Version and UpdatedAt are owned by the store.
func (p Patch) ApplyTo(item *Item) {
	if item == nil {
		return
	}
	if p.Status.Set && p.Status.Value != nil {
		item.Status = *p.Status.Value
	}
	if p.ScheduledAt.Set {
		if p.ScheduledAt.Value == nil {
			item.ScheduledAt = Timestamp{}
		} else {
			item.ScheduledAt = *p.ScheduledAt.Value
		}
	}
	if p.PublishedAt.Set {
		if p.PublishedAt.Value == nil {
			item.PublishedAt = nil
		} else {
			published := p.PublishedAt.Value.UTC()
			item.PublishedAt = &published
		}
	}
	if p.FolderID.Set {
		if p.FolderID.Value == nil {
			item.FolderID = nil
		} else {
			folder := *p.FolderID.Value
			item.FolderID = &folder
		}
	}
}

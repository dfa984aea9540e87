package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrVersionConflict is returned when a write's expected version does not
// match the stored version.
var ErrVersionConflict = errors.New("content: version conflict")

// ItemRepository persists content items. Every mutation is a compare-and-swap
// on Version.
type ItemRepository interface {
	Create(ctx context.Context, record *Item) (*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, filter ListFilter) ([]*Item, error)
	Write(ctx context.Context, id uuid.UUID, patch Patch, expectedVersion int64) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DetachFolder(ctx context.Context, folderID uuid.UUID) (int, error)
}

// FolderRepository persists folders.
type FolderRepository interface {
	Create(ctx context.Context, record *Folder) (*Folder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Folder, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a record cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// VersionConflictError carries the versions involved in a failed write.
type VersionConflictError struct {
	ID       uuid.UUID
	Expected int64
	Actual   int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("content: item %s expected version %d, stored version %d", e.ID, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// Option configures repository implementations.
type Option func(*repositoryOptions)

type repositoryOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used to stamp created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *repositoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) repositoryOptions {
	cfg := repositoryOptions{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// prepareItem fills identity and bookkeeping fields on a new record.
func prepareItem(record *Item, now time.Time) *Item {
	item := cloneItem(record)
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Version <= 0 {
		item.Version = 1
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	return item
}

// NewItemRepository builds the go-repository-bun base for items.
func NewItemRepository(db *bun.DB) repository.Repository[*Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Item]{
		NewRecord: func() *Item { return &Item{} },
		GetID: func(i *Item) uuid.UUID {
			return i.ID
		},
		SetID: func(i *Item, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(i *Item) string {
			if i == nil {
				return ""
			}
			return i.ID.String()
		},
	})
}

// NewFolderRepository builds the go-repository-bun base for folders.
func NewFolderRepository(db *bun.DB) repository.Repository[*Folder] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Folder]{
		NewRecord: func() *Folder { return &Folder{} },
		GetID: func(f *Folder) uuid.UUID {
			return f.ID
		},
		SetID: func(f *Folder, id uuid.UUID) {
			f.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(f *Folder) string {
			return f.Name
		},
	})
}

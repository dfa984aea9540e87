package content

import (
	"time"

	"github.com/goliatone/go-publish/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Item is a publishable piece of media content. Kind specific fields live
// with the owning services; the lifecycle engine only tracks publish state.
type Item struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID          uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	Kind        domain.Kind   `bun:"kind,notnull" json:"kind"`
	Status      domain.Status `bun:"publish_status,notnull" json:"publish_status"`
	ScheduledAt Timestamp     `bun:"scheduled_at,type:text,nullzero" json:"scheduled_at"`
	PublishedAt *time.Time    `bun:"published_at,nullzero" json:"published_at"`
	FolderID    *uuid.UUID    `bun:"folder_id,type:uuid" json:"folder_id"`
	Version     int64         `bun:"version,notnull,default:1" json:"version"`
	CreatedAt   time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Folder groups items. Deleting a folder detaches its members. Creating a
// folder whose slug already exists returns the stored folder.
type Folder struct {
	bun.BaseModel `bun:"table:content_folders,alias:cf"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Slug        string    `bun:"slug,notnull,unique" json:"slug"`
	Description string    `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// InFolder reports whether the item currently belongs to folderID. A nil
// folderID matches uncategorized items.
func (i *Item) InFolder(folderID *uuid.UUID) bool {
	if i == nil {
		return false
	}
	if folderID == nil || i.FolderID == nil {
		return folderID == nil && i.FolderID == nil
	}
	return *i.FolderID == *folderID
}

func cloneItem(src *Item) *Item {
	if src == nil {
		return nil
	}
	dst := *src
	if src.PublishedAt != nil {
		published := *src.PublishedAt
		dst.PublishedAt = &published
	}
	if src.FolderID != nil {
		folder := *src.FolderID
		dst.FolderID = &folder
	}
	return &dst
}

func cloneFolder(src *Folder) *Folder {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

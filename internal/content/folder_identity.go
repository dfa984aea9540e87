package content

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// ErrFolderNameRequired is returned when a folder has neither a name nor a
// slug to derive its identity from.
var ErrFolderNameRequired = errors.New("content: folder name is required")

// FolderSlug normalises a folder name into its slug.
func FolderSlug(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrFolderNameRequired
	}
	normalized, err := slug.Normalize(name)
	if err != nil {
		return "", err
	}
	if normalized == "" {
		return "", ErrFolderNameRequired
	}
	return normalized, nil
}

// FolderID derives the stable id of the folder with slug value, so imports
// that name the same folder land on the same record.
func FolderID(value string) uuid.UUID {
	key := "publish:folder:" + strings.ToLower(strings.TrimSpace(value))
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}

func prepareFolder(record *Folder, now time.Time) (*Folder, error) {
	folder := cloneFolder(record)
	source := folder.Slug
	if strings.TrimSpace(source) == "" {
		source = folder.Name
	}
	normalized, err := FolderSlug(source)
	if err != nil {
		return nil, err
	}
	folder.Slug = normalized
	if strings.TrimSpace(folder.Name) == "" {
		folder.Name = normalized
	}
	if folder.ID == uuid.Nil {
		folder.ID = FolderID(normalized)
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now.UTC()
	}
	return folder, nil
}

package content

import (
	"context"

	"github.com/google/uuid"
)

// DeleteFolder removes the folder and then detaches every member. Members are
// never deleted; each detached item gets a version bump. The folder is removed
// first so no new move can target it while members are being detached.
func DeleteFolder(ctx context.Context, folders FolderRepository, items ItemRepository, id uuid.UUID) (int, error) {
	exists, err := folders.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, &NotFoundError{Resource: "content_folder", Key: id.String()}
	}
	if err := folders.Delete(ctx, id); err != nil {
		return 0, err
	}
	return items.DetachFolder(ctx, id)
}

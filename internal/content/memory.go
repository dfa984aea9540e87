package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryItemRepository is an in-memory ItemRepository. Writes are serialised
// by a mutex so the version check and the update are atomic.
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
	now   func() time.Time
}

// NewMemoryItemRepository creates an empty in-memory item repository.
func NewMemoryItemRepository(opts ...Option) *MemoryItemRepository {
	cfg := applyOptions(opts)
	return &MemoryItemRepository{
		items: make(map[uuid.UUID]*Item),
		now:   cfg.now,
	}
}

// Create inserts the supplied item. Existing ids are overwritten, which lets
// fixtures seed corrupted states directly.
func (m *MemoryItemRepository) Create(_ context.Context, record *Item) (*Item, error) {
	if record == nil {
		return nil, &NotFoundError{Resource: "content_item"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	item := prepareItem(record, m.now().UTC())
	m.items[item.ID] = item
	return cloneItem(item), nil
}

// GetByID retrieves an item by identifier.
func (m *MemoryItemRepository) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: id.String()}
	}
	return cloneItem(rec), nil
}

// List returns items matching filter ordered by id.
func (m *MemoryItemRepository) List(ctx context.Context, filter ListFilter) ([]*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]*Item, 0, len(m.items))
	for _, rec := range m.items {
		if filter.Matches(rec) {
			out = append(out, cloneItem(rec))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return compareIDs(out[i].ID, out[j].ID) < 0
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Write applies patch when the stored version equals expectedVersion.
func (m *MemoryItemRepository) Write(ctx context.Context, id uuid.UUID, patch Patch, expectedVersion int64) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: id.String()}
	}
	if rec.Version != expectedVersion {
		return nil, &VersionConflictError{ID: id, Expected: expectedVersion, Actual: rec.Version}
	}

	updated := cloneItem(rec)
	patch.ApplyTo(updated)
	updated.Version++
	updated.UpdatedAt = m.now().UTC()
	m.items[id] = updated
	return cloneItem(updated), nil
}

// Delete removes an item.
func (m *MemoryItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return &NotFoundError{Resource: "content_item", Key: id.String()}
	}
	delete(m.items, id)
	return nil
}

// DetachFolder moves every member of folderID to uncategorized, bumping
// their versions.
func (m *MemoryItemRepository) DetachFolder(ctx context.Context, folderID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	detached := 0
	for id, rec := range m.items {
		if rec.FolderID == nil || *rec.FolderID != folderID {
			continue
		}
		updated := cloneItem(rec)
		updated.FolderID = nil
		updated.Version++
		updated.UpdatedAt = now
		m.items[id] = updated
		detached++
	}
	return detached, nil
}

// MemoryFolderRepository is an in-memory FolderRepository.
type MemoryFolderRepository struct {
	mu      sync.RWMutex
	folders map[uuid.UUID]*Folder
	now     func() time.Time
}

// NewMemoryFolderRepository creates an empty in-memory folder repository.
func NewMemoryFolderRepository(opts ...Option) *MemoryFolderRepository {
	cfg := applyOptions(opts)
	return &MemoryFolderRepository{
		folders: make(map[uuid.UUID]*Folder),
		now:     cfg.now,
	}
}

func (m *MemoryFolderRepository) Create(_ context.Context, record *Folder) (*Folder, error) {
	if record == nil {
		return nil, &NotFoundError{Resource: "content_folder"}
	}
	folder, err := prepareFolder(record, m.now())
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.folders[folder.ID]; ok {
		return cloneFolder(existing), nil
	}
	m.folders[folder.ID] = folder
	return cloneFolder(folder), nil
}

func (m *MemoryFolderRepository) GetByID(_ context.Context, id uuid.UUID) (*Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.folders[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content_folder", Key: id.String()}
	}
	return cloneFolder(rec), nil
}

func (m *MemoryFolderRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.folders[id]
	return ok, nil
}

func (m *MemoryFolderRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.folders[id]; !ok {
		return &NotFoundError{Resource: "content_folder", Key: id.String()}
	}
	delete(m.folders, id)
	return nil
}

package content

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

const (
	itemsTable      = "content_items"
	dueScanPageSize = 200
)

// BunItemRepository stores items with bun. Reads go through go-repository-bun;
// writes are issued as version-guarded UPDATE statements. Items are never
// cached so a read after a conflicting write always sees the stored version.
type BunItemRepository struct {
	db   *bun.DB
	repo repository.Repository[*Item]
	now  func() time.Time
}

func NewBunItemRepository(db *bun.DB, opts ...Option) *BunItemRepository {
	cfg := applyOptions(opts)
	return &BunItemRepository{
		db:   db,
		repo: NewItemRepository(db),
		now:  cfg.now,
	}
}

func (r *BunItemRepository) Create(ctx context.Context, record *Item) (*Item, error) {
	if record == nil {
		return nil, &NotFoundError{Resource: "content_item"}
	}
	item := prepareItem(record, r.now().UTC())
	created, err := r.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("content_item repository error: %w", err)
	}
	return created, nil
}

func (r *BunItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "content_item", id.String())
	}
	return result, nil
}

func (r *BunItemRepository) List(ctx context.Context, filter ListFilter) ([]*Item, error) {
	if filter.DueAt != nil {
		return r.listDue(ctx, filter)
	}
	where := filterProcessor(filter)

	var (
		records []*Item
		err     error
	)
	if filter.Limit > 0 {
		records, _, err = r.repo.List(ctx,
			repository.SelectRawProcessor(where),
			repository.SelectPaginate(filter.Limit, 0),
		)
	} else {
		records, _, err = r.repo.List(ctx, repository.SelectRawProcessor(where))
	}
	if err != nil {
		return nil, fmt.Errorf("content_item repository error: %w", err)
	}
	return records, nil
}

func filterProcessor(filter ListFilter) func(q *bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.Kind != nil {
			q = q.Where("?TableAlias.kind = ?", *filter.Kind)
		}
		if filter.Status != nil {
			q = q.Where("?TableAlias.publish_status = ?", *filter.Status)
		}
		if filter.Uncategorized {
			q = q.Where("?TableAlias.folder_id IS NULL")
		} else if filter.FolderID != nil {
			q = q.Where("?TableAlias.folder_id = ?", *filter.FolderID)
		}
		if filter.populated {
			q = q.
				Where("?TableAlias.scheduled_at IS NOT NULL").
				Where("?TableAlias.scheduled_at <> ''")
		}
		if filter.AfterID != nil {
			q = q.Where("?TableAlias.id > ?", *filter.AfterID)
		}
		return q.OrderExpr("?TableAlias.id ASC")
	}
}

// listDue pages through scheduled rows and keeps the ones whose parsed
// scheduled_at is due. Imported values in other layouts do not sort
// chronologically as text, so the cutoff is never compared in SQL.
func (r *BunItemRepository) listDue(ctx context.Context, filter ListFilter) ([]*Item, error) {
	status := domain.StatusScheduled
	scan := filter
	scan.Status = &status
	scan.DueAt = nil
	scan.populated = true
	if scan.Limit <= 0 {
		scan.Limit = dueScanPageSize
	}

	out := []*Item{}
	for {
		page, err := r.List(ctx, scan)
		if err != nil {
			return nil, err
		}
		for _, item := range page {
			if !filter.Matches(item) {
				continue
			}
			out = append(out, item)
			if filter.Limit > 0 && len(out) == filter.Limit {
				return out, nil
			}
		}
		if len(page) < scan.Limit {
			return out, nil
		}
		last := page[len(page)-1].ID
		scan.AfterID = &last
	}
}

// Write applies patch with UPDATE ... WHERE id = ? AND version = ?. The new
// row comes back through RETURNING, so concurrent writers never see each
// other's state as their own result. When no row matches, the item is re-read
// to tell a missing item from a stale one.
func (r *BunItemRepository) Write(ctx context.Context, id uuid.UUID, patch Patch, expectedVersion int64) (*Item, error) {
	query := r.db.NewUpdate().
		TableExpr(itemsTable).
		Set("version = version + 1").
		Set("updated_at = ?", r.now().UTC())

	if patch.Status.Set && patch.Status.Value != nil {
		query = query.Set("publish_status = ?", *patch.Status.Value)
	}
	if patch.ScheduledAt.Set {
		var value any
		if patch.ScheduledAt.Value != nil && !patch.ScheduledAt.Value.IsZero() {
			value = *patch.ScheduledAt.Value
		}
		query = query.Set("scheduled_at = ?", value)
	}
	if patch.PublishedAt.Set {
		var value any
		if patch.PublishedAt.Value != nil {
			value = patch.PublishedAt.Value.UTC()
		}
		query = query.Set("published_at = ?", value)
	}
	if patch.FolderID.Set {
		var value any
		if patch.FolderID.Value != nil {
			value = *patch.FolderID.Value
		}
		query = query.Set("folder_id = ?", value)
	}

	query = query.
		Where("id = ?", id).
		Where("version = ?", expectedVersion)

	if r.db.Dialect().Features().Has(feature.Returning) {
		var rows []*Item
		if _, err := query.Returning("*").Exec(ctx, &rows); err != nil {
			return nil, fmt.Errorf("content_item repository error: %w", err)
		}
		if len(rows) == 1 {
			return rows[0], nil
		}
		return nil, r.conflict(ctx, id, expectedVersion)
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("content_item repository error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("content_item repository error: %w", err)
	}
	if affected == 0 {
		return nil, r.conflict(ctx, id, expectedVersion)
	}
	return r.GetByID(ctx, id)
}

// conflict tells a missing item from a stale one after an UPDATE matched no row.
func (r *BunItemRepository) conflict(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &VersionConflictError{ID: id, Expected: expectedVersion, Actual: current.Version}
}

func (r *BunItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		TableExpr(itemsTable).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("content_item repository error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("content_item repository error: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: "content_item", Key: id.String()}
	}
	return nil
}

func (r *BunItemRepository) DetachFolder(ctx context.Context, folderID uuid.UUID) (int, error) {
	res, err := r.db.NewUpdate().
		TableExpr(itemsTable).
		Set("folder_id = NULL").
		Set("version = version + 1").
		Set("updated_at = ?", r.now().UTC()).
		Where("folder_id = ?", folderID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("content_item repository error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("content_item repository error: %w", err)
	}
	return int(affected), nil
}

// BunFolderRepository stores folders with optional read caching.
type BunFolderRepository struct {
	repo repository.Repository[*Folder]
	now  func() time.Time
}

func NewBunFolderRepository(db *bun.DB, opts ...Option) *BunFolderRepository {
	return NewBunFolderRepositoryWithCache(db, nil, nil, opts...)
}

func NewBunFolderRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *BunFolderRepository {
	cfg := applyOptions(opts)
	base := NewFolderRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunFolderRepository{repo: wrapped, now: cfg.now}
}

func (r *BunFolderRepository) Create(ctx context.Context, record *Folder) (*Folder, error) {
	if record == nil {
		return nil, &NotFoundError{Resource: "content_folder"}
	}
	folder, err := prepareFolder(record, r.now())
	if err != nil {
		return nil, err
	}
	if existing, err := r.GetByID(ctx, folder.ID); err == nil {
		return existing, nil
	} else if !IsNotFound(err) {
		return nil, err
	}
	created, err := r.repo.Create(ctx, folder)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunFolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*Folder, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "content_folder", id.String())
	}
	return result, nil
}

func (r *BunFolderRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *BunFolderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	folder, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, folder); err != nil {
		return mapRepositoryError(err, "content_folder", id.String())
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

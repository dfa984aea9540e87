package content

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// EnsureSchema creates the folder and item tables when they are missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Folder)(nil),
		(*Item)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("content: create table for %T: %w", model, err)
		}
	}
	indexes := []struct {
		name    string
		columns []string
	}{
		{name: "idx_content_items_kind_status", columns: []string{"kind", "publish_status"}},
		{name: "idx_content_items_folder", columns: []string{"folder_id"}},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model((*Item)(nil)).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("content: create index %s: %w", idx.name, err)
		}
	}
	return nil
}

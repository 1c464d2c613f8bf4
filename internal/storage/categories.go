package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
)

// CreateCategory inserts a new category. Names are unique
// case-insensitively; a duplicate fails.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createCategory(ctx, s.db, category)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, category *model.Category) error {
	return createCategory(ctx, t.tx, category)
}

func createCategory(ctx context.Context, q dbtx, category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(category.Name, "name"); err != nil {
		return err
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO categories (name, color, icon, is_default, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		category.Name, category.Color, category.Icon, category.IsDefault, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	category.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category id: %w", err)
	}
	slog.Debug("created category", "name", category.Name, "id", category.ID)
	return nil
}

// GetCategories returns all categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, s.db)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	return getCategories(ctx, t.tx)
}

func getCategories(ctx context.Context, q dbtx) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, color, icon, is_default, created_at
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.IsDefault, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByName returns a category by name, matched case-insensitively.
// A missing category returns nil without error.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, s.db, name)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return getCategoryByName(ctx, t.tx, name)
}

func getCategoryByName(ctx context.Context, q dbtx, name string) (*model.Category, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var c model.Category
	err := q.QueryRowContext(ctx, `
		SELECT id, name, color, icon, is_default, created_at
		FROM categories WHERE name = ? COLLATE NOCASE`, name).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.IsDefault, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

// UpdateCategory persists changes to an existing category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateCategory(ctx, s.db, category)
}

func (t *sqliteTransaction) UpdateCategory(ctx context.Context, category *model.Category) error {
	return updateCategory(ctx, t.tx, category)
}

func updateCategory(ctx context.Context, q dbtx, category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(category.Name, "name"); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?`,
		category.Name, category.Color, category.Icon, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, category.ID)
	}
	return nil
}

// DeleteCategory removes a category. Default categories cannot be deleted.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, s.db, id)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int64) error {
	return deleteCategory(ctx, t.tx, id)
}

func deleteCategory(ctx context.Context, q dbtx, id int64) error {
	var isDefault bool
	err := q.QueryRowContext(ctx, `SELECT is_default FROM categories WHERE id = ?`, id).Scan(&isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to query category: %w", err)
	}
	if isDefault {
		return fmt.Errorf("default categories cannot be deleted")
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

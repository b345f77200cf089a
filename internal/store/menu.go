package store

import (
	"context"
	"fmt"

	"bistro-service/internal/models"
)

// ListMenu returns the catalog in display order
func (s *Store) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT id, name, description, price, category, image_url, available FROM menu_items ORDER BY position")
	return items, err
}

// ReplaceMenu swaps the whole catalog in one transaction
func (s *Store) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM menu_items"); err != nil {
		return fmt.Errorf("failed to clear menu: %w", err)
	}

	insert := s.rebind(`
		INSERT INTO menu_items (id, position, name, description, price, category, image_url, available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, item := range items {
		_, err := tx.ExecContext(ctx, insert,
			item.ID, i, item.Name, item.Description, item.Price, item.Category, item.ImageURL, item.Available)
		if err != nil {
			return fmt.Errorf("failed to insert menu item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// UpsertMenuItem updates the item in place or appends it to the catalog
func (s *Store) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int64
	if err := tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(position), -1) + 1 FROM menu_items"); err != nil {
		return fmt.Errorf("failed to read menu position: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO menu_items (id, position, name, description, price, category, image_url, available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			category = excluded.category,
			image_url = excluded.image_url,
			available = excluded.available`),
		item.ID, next, item.Name, item.Description, item.Price, item.Category, item.ImageURL, item.Available)
	if err != nil {
		return fmt.Errorf("failed to upsert menu item %s: %w", item.ID, err)
	}

	return tx.Commit()
}

// DeleteMenuItem removes one item
func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM menu_items WHERE id = ?"), id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrMenuItemNotFound, id)
	}
	return nil
}

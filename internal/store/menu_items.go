package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/jedilnik/internal/model"
)

const menuItemColumns = `id, restaurant_id, name, description, price, category, is_veg, image,
	is_available, created_at, updated_at`

func scanMenuItem(s rowScanner) (*model.MenuItem, error) {
	item := &model.MenuItem{}
	var price string
	err := s.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &price, &item.Category,
		&item.IsVeg, &item.Image, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Price = model.Price(price)
	return item, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMenuItem(ctx context.Context, ex execer, item model.MenuItem, now time.Time) (int64, error) {
	result, err := ex.ExecContext(ctx,
		`INSERT INTO menu_items (restaurant_id, name, description, price, category, is_veg, image, is_available, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.RestaurantID, item.Name, item.Description, item.Price.String(), item.Category,
		item.IsVeg, item.Image, item.IsAvailable, now, now,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CreateMenuItem creates a menu item for item.RestaurantID.
func CreateMenuItem(ctx context.Context, db *sql.DB, item model.MenuItem) (*model.MenuItem, error) {
	id, err := insertMenuItem(ctx, db, item, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("creating menu item: %w", err)
	}
	return GetMenuItem(ctx, db, id)
}

// CreateMenuItems inserts a batch of items for one restaurant in a single
// transaction. Either every item is stored or none is.
func CreateMenuItems(ctx context.Context, db *sql.DB, restaurantID int64, items []model.MenuItem) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Later rows get later timestamps so "recent" keeps the sheet order.
	now := time.Now().UTC()
	for i, item := range items {
		item.RestaurantID = restaurantID
		if _, err := insertMenuItem(ctx, tx, item, now.Add(time.Duration(i)*time.Microsecond)); err != nil {
			return 0, fmt.Errorf("creating menu item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing menu items: %w", err)
	}
	return len(items), nil
}

// GetMenuItem returns a menu item by ID.
func GetMenuItem(ctx context.Context, db *sql.DB, id int64) (*model.MenuItem, error) {
	item, err := scanMenuItem(db.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting menu item: %w", err)
	}
	return item, nil
}

// ListMenuItems returns a restaurant's items in creation order.
func ListMenuItems(ctx context.Context, db *sql.DB, restaurantID int64) ([]model.MenuItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id = ? ORDER BY created_at, id`,
		restaurantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateMenuItem overwrites the editable fields of a menu item. The
// restaurant and creation time never change.
func UpdateMenuItem(ctx context.Context, db *sql.DB, item model.MenuItem) error {
	_, err := db.ExecContext(ctx,
		`UPDATE menu_items SET name = ?, description = ?, price = ?, category = ?, is_veg = ?, image = ?,
		        is_available = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name, item.Description, item.Price.String(), item.Category, item.IsVeg, item.Image,
		item.IsAvailable, time.Now().UTC(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating menu item: %w", err)
	}
	return nil
}

// DeleteMenuItem removes a menu item.
func DeleteMenuItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting menu item: %w", err)
	}
	return nil
}

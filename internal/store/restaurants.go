package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/jedilnik/internal/model"
)

const restaurantColumns = `id, name, description, address, phone, email, image, website,
	is_active, custom_types, mongo_uri, created_at, deleted_at`

func scanRestaurant(s rowScanner) (*model.Restaurant, error) {
	r := &model.Restaurant{}
	var customTypes string
	err := s.Scan(&r.ID, &r.Name, &r.Description, &r.Address, &r.Phone, &r.Email, &r.Image, &r.Website,
		&r.IsActive, &customTypes, &r.MongoURI, &r.CreatedAt, &r.DeletedAt)
	if err != nil {
		return nil, err
	}
	if customTypes != "" {
		if err := json.Unmarshal([]byte(customTypes), &r.CustomTypes); err != nil {
			return nil, fmt.Errorf("decoding custom types of restaurant %d: %w", r.ID, err)
		}
	}
	return r, nil
}

func encodeCustomTypes(types []string) (string, error) {
	if types == nil {
		types = []string{}
	}
	data, err := json.Marshal(types)
	if err != nil {
		return "", fmt.Errorf("encoding custom types: %w", err)
	}
	return string(data), nil
}

// CreateRestaurant creates a new restaurant from r and returns the stored record.
func CreateRestaurant(ctx context.Context, db *sql.DB, r model.Restaurant) (*model.Restaurant, error) {
	customTypes, err := encodeCustomTypes(r.CustomTypes)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO restaurants (name, description, address, phone, email, image, website, is_active, custom_types, mongo_uri)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Description, r.Address, r.Phone, r.Email, r.Image, r.Website, r.IsActive, customTypes, r.MongoURI,
	)
	if err != nil {
		return nil, fmt.Errorf("creating restaurant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting restaurant id: %w", err)
	}

	return GetRestaurant(ctx, db, id)
}

// GetRestaurant returns a non-deleted restaurant by ID.
func GetRestaurant(ctx context.Context, db *sql.DB, id int64) (*model.Restaurant, error) {
	r, err := scanRestaurant(db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ? AND deleted_at IS NULL`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting restaurant: %w", err)
	}
	return r, nil
}

// ListRestaurants returns all non-deleted restaurants ordered by name.
func ListRestaurants(ctx context.Context, db *sql.DB) ([]model.Restaurant, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE deleted_at IS NULL ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []model.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning restaurant: %w", err)
		}
		restaurants = append(restaurants, *r)
	}
	return restaurants, rows.Err()
}

// UpdateRestaurant overwrites the editable fields of a restaurant.
func UpdateRestaurant(ctx context.Context, db *sql.DB, r model.Restaurant) error {
	customTypes, err := encodeCustomTypes(r.CustomTypes)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE restaurants SET name = ?, description = ?, address = ?, phone = ?, email = ?, image = ?,
		        website = ?, is_active = ?, custom_types = ?, mongo_uri = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		r.Name, r.Description, r.Address, r.Phone, r.Email, r.Image, r.Website, r.IsActive, customTypes, r.MongoURI, r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating restaurant: %w", err)
	}
	return nil
}

// SetCustomTypes replaces a restaurant's configured category list.
func SetCustomTypes(ctx context.Context, db *sql.DB, id int64, types []string) error {
	customTypes, err := encodeCustomTypes(types)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE restaurants SET custom_types = ? WHERE id = ? AND deleted_at IS NULL`,
		customTypes, id,
	)
	if err != nil {
		return fmt.Errorf("setting custom types: %w", err)
	}
	return nil
}

// DeleteRestaurant soft-deletes a restaurant and unassigns its admins.
func DeleteRestaurant(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE restaurants SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id,
	); err != nil {
		return fmt.Errorf("deleting restaurant: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET assigned_restaurant = NULL WHERE assigned_restaurant = ?`, id,
	); err != nil {
		return fmt.Errorf("unassigning admins: %w", err)
	}

	return tx.Commit()
}

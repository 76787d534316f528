package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/jedilnik/internal/model"
)

// ImagePath is the URL prefix menu items use to reference a stored image.
const ImagePath = "/api/images/"

// CreateImage stores an uploaded image and returns it with a new ID.
func CreateImage(ctx context.Context, db *sql.DB, restaurantID int64, data []byte, mime string) (*model.Image, error) {
	img := &model.Image{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Data:         data,
		MIME:         mime,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO images (id, restaurant_id, data, mime, created_at) VALUES (?, ?, ?, ?, ?)`,
		img.ID, img.RestaurantID, img.Data, img.MIME, img.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating image: %w", err)
	}
	return img, nil
}

// GetImage returns an image by ID.
func GetImage(ctx context.Context, db *sql.DB, id string) (*model.Image, error) {
	img := &model.Image{}
	err := db.QueryRowContext(ctx,
		`SELECT id, restaurant_id, data, mime, created_at FROM images WHERE id = ?`, id,
	).Scan(&img.ID, &img.RestaurantID, &img.Data, &img.MIME, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}
	return img, nil
}

// DeleteExpiredImages removes images created before cutoff that no menu item
// links to, returning how many were removed.
func DeleteExpiredImages(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM images
		 WHERE created_at < ?
		   AND NOT EXISTS (SELECT 1 FROM menu_items m WHERE m.image = ? || images.id)`,
		cutoff.UTC(), ImagePath,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired images: %w", err)
	}
	return result.RowsAffected()
}

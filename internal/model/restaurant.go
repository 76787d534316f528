package model

import (
	"strings"
	"time"
)

// Restaurant is a tenant of the panel. Its menu is organized under
// CustomTypes when set; restaurants linked to an external menu database
// (MongoURI) derive their categories from the items instead.
type Restaurant struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Image       string     `json:"image,omitempty"`
	Website     string     `json:"website,omitempty"`
	IsActive    bool       `json:"is_active"`
	CustomTypes []string   `json:"custom_types,omitempty"`
	MongoURI    string     `json:"mongo_uri,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// HasExternalSource reports whether the restaurant's menu lives in a linked
// external database.
func (r Restaurant) HasExternalSource() bool {
	return strings.TrimSpace(r.MongoURI) != ""
}

// Image is an uploaded picture kept until a menu item references it.
type Image struct {
	ID           string    `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	Data         []byte    `json:"-"`
	MIME         string    `json:"mime"`
	CreatedAt    time.Time `json:"created_at"`
}

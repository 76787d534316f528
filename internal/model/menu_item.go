package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MenuItem is a single dish or drink on a restaurant's menu.
type MenuItem struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        Price     `json:"price"`
	Category     string    `json:"category"`
	IsVeg        bool      `json:"is_veg"`
	Image        string    `json:"image,omitempty"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Price is a menu price kept as entered. Clients send either a JSON number or
// a string; both are stored as text so nothing is lost to float rounding.
type Price string

// UnmarshalJSON accepts a string, a number or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding price: %w", err)
		}
		*p = Price(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("price must be a string or number: %w", err)
		}
		*p = Price(n.String())
		return nil
	}
}

// Float parses the price. ok is false for blank, non-numeric, NaN or
// infinite values.
func (p Price) Float() (v float64, ok bool) {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// String returns the price as entered.
func (p Price) String() string {
	return string(p)
}

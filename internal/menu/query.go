package menu

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidQuery is returned when a view parameter has an unknown value.
var ErrInvalidQuery = errors.New("invalid menu query")

// VegFilter restricts items by their vegetarian flag.
type VegFilter int

const (
	VegAll VegFilter = iota
	VegOnly
	NonVegOnly
)

func (f VegFilter) String() string {
	switch f {
	case VegOnly:
		return "veg"
	case NonVegOnly:
		return "non-veg"
	default:
		return "all"
	}
}

// ParseVegFilter accepts "all", "veg", "non-veg" and "nonVeg". Empty means all.
func ParseVegFilter(s string) (VegFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return VegAll, nil
	case "veg":
		return VegOnly, nil
	case "non-veg", "nonveg", "non_veg":
		return NonVegOnly, nil
	}
	return VegAll, fmt.Errorf("%w: veg filter %q", ErrInvalidQuery, s)
}

// AvailabilityFilter restricts items by their availability flag.
type AvailabilityFilter int

const (
	AvailabilityAll AvailabilityFilter = iota
	AvailableOnly
	UnavailableOnly
)

func (f AvailabilityFilter) String() string {
	switch f {
	case AvailableOnly:
		return "available"
	case UnavailableOnly:
		return "unavailable"
	default:
		return "all"
	}
}

// ParseAvailabilityFilter accepts "all", "available" and "unavailable".
func ParseAvailabilityFilter(s string) (AvailabilityFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AvailabilityAll, nil
	case "available":
		return AvailableOnly, nil
	case "unavailable":
		return UnavailableOnly, nil
	}
	return AvailabilityAll, fmt.Errorf("%w: availability filter %q", ErrInvalidQuery, s)
}

// SortKey selects the field items are ordered by.
type SortKey int

const (
	SortName SortKey = iota
	SortPrice
	SortCategory
	SortRecent
)

func (k SortKey) String() string {
	switch k {
	case SortPrice:
		return "price"
	case SortCategory:
		return "category"
	case SortRecent:
		return "recent"
	default:
		return "name"
	}
}

// ParseSortKey accepts "name", "price", "category" and "recent".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return SortName, nil
	case "price":
		return SortPrice, nil
	case "category":
		return SortCategory, nil
	case "recent":
		return SortRecent, nil
	}
	return SortName, fmt.Errorf("%w: sort key %q", ErrInvalidQuery, s)
}

// Direction is the sort order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc" and "desc".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return Asc, fmt.Errorf("%w: sort direction %q", ErrInvalidQuery, s)
}

// Query holds the current search, filter and sort state of a menu view. The
// zero value matches every item and sorts by name ascending.
type Query struct {
	Search       string
	Category     string
	Veg          VegFilter
	Availability AvailabilityFilter
	Sort         SortKey
	Direction    Direction
}

// SearchActive reports whether a search string narrows the view.
func (q Query) SearchActive() bool {
	return q.Search != ""
}

// ParseQuery builds a Query from request parameters: search, category, veg,
// available, sort and order.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Search:   v.Get("search"),
		Category: strings.TrimSpace(v.Get("category")),
	}

	var err error
	if q.Veg, err = ParseVegFilter(v.Get("veg")); err != nil {
		return Query{}, err
	}
	if q.Availability, err = ParseAvailabilityFilter(v.Get("available")); err != nil {
		return Query{}, err
	}
	if q.Sort, err = ParseSortKey(v.Get("sort")); err != nil {
		return Query{}, err
	}
	if q.Direction, err = ParseDirection(v.Get("order")); err != nil {
		return Query{}, err
	}
	return q, nil
}

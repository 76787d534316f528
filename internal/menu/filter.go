package menu

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/jedilnik/internal/model"
)

// FilterAndSort returns the items matching q, ordered by q.Sort and
// q.Direction. The sort is stable and the input slice is left untouched.
func FilterAndSort(items []model.MenuItem, q Query) []model.MenuItem {
	out := make([]model.MenuItem, 0, len(items))
	search := strings.ToLower(q.Search)
	for _, item := range items {
		if matches(item, q, search) {
			out = append(out, item)
		}
	}

	compare := comparator(q.Sort)
	slices.SortStableFunc(out, func(a, b model.MenuItem) int {
		if q.Direction == Desc {
			return -compare(a, b)
		}
		return compare(a, b)
	})
	return out
}

func matches(item model.MenuItem, q Query, search string) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(item.Name), search) &&
		!strings.Contains(strings.ToLower(item.Description), search) &&
		!strings.Contains(strings.ToLower(item.Category), search) {
		return false
	}

	if q.Category != "" && !strings.EqualFold(q.Category, "all") &&
		strings.ToLower(item.Category) != strings.ToLower(q.Category) {
		return false
	}

	switch q.Veg {
	case VegOnly:
		if !item.IsVeg {
			return false
		}
	case NonVegOnly:
		if item.IsVeg {
			return false
		}
	}

	switch q.Availability {
	case AvailableOnly:
		if !item.IsAvailable {
			return false
		}
	case UnavailableOnly:
		if item.IsAvailable {
			return false
		}
	}

	return true
}

// comparator returns the ascending comparison for key. Collators keep
// internal buffers, so each call gets its own.
func comparator(key SortKey) func(a, b model.MenuItem) int {
	switch key {
	case SortPrice:
		return comparePrice
	case SortCategory:
		c := collate.New(language.English)
		return func(a, b model.MenuItem) int {
			return c.CompareString(a.Category, b.Category)
		}
	case SortRecent:
		return func(a, b model.MenuItem) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	default:
		c := collate.New(language.English)
		return func(a, b model.MenuItem) int {
			return c.CompareString(a.Name, b.Name)
		}
	}
}

// comparePrice orders unparsable prices below every valid one.
func comparePrice(a, b model.MenuItem) int {
	av, aok := a.Price.Float()
	bv, bok := b.Price.Float()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return cmp.Compare(av, bv)
}

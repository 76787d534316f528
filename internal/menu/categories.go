// Package menu derives the read views of a restaurant menu: the category
// taxonomy, the filtered and sorted item list, and the per-category buckets.
//
// Every function here is a pure transformation of a snapshot the caller
// already fetched. Nothing is mutated and no I/O happens, so views can be
// recomputed on every request or keystroke.
package menu

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/erazemk/jedilnik/internal/model"
)

// DefaultCategories is used when a restaurant has no configured taxonomy and
// none can be derived from its items.
var DefaultCategories = []string{"Starters", "Main Course", "Desserts", "Beverages"}

// ResolveCategories returns the ordered category labels a restaurant's menu is
// organized under.
//
// Configured custom types win and are returned as stored. Restaurants backed
// by an external menu database derive labels from their items. Everything
// else falls back to DefaultCategories.
func ResolveCategories(r model.Restaurant, items []model.MenuItem) []string {
	if len(r.CustomTypes) > 0 {
		return append([]string(nil), r.CustomTypes...)
	}

	if r.HasExternalSource() && len(items) > 0 {
		raw := make([]string, 0, len(items))
		for _, item := range items {
			raw = append(raw, item.Category)
		}
		if derived := DeriveCategories(raw); len(derived) > 0 {
			return derived
		}
	}

	return append([]string(nil), DefaultCategories...)
}

// DeriveCategories title-cases raw labels and removes duplicates, keeping the
// first occurrence. Blank labels are skipped.
func DeriveCategories(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, label := range raw {
		if strings.TrimSpace(label) == "" {
			continue
		}
		title := TitleCategory(label)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, title)
	}
	return out
}

// CleanLabels trims configured category labels, drops blanks and removes
// case-insensitive duplicates. Spelling is otherwise kept as entered.
func CleanLabels(labels []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, label := range labels {
		label = strings.TrimSpace(label)
		key := bucketKey(label)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	return out
}

// TitleCategory canonicalizes a free-text label: "  main-course " and
// "Main_Course" both become "Main Course".
func TitleCategory(label string) string {
	words := splitLabel(strings.ToLower(label))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NormalizeLabel returns the lower-cased, separator-collapsed form of a label.
func NormalizeLabel(label string) string {
	return strings.Join(splitLabel(strings.ToLower(label)), " ")
}

// bucketKey is the comparison key used for bucket membership. It only trims
// and lower-cases, so "Main Course" and "Main Courses" stay distinct.
func bucketKey(label string) string {
	return strings.TrimSpace(strings.ToLower(label))
}

func splitLabel(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
}

package menu

import (
	"slices"
	"testing"

	"github.com/erazemk/jedilnik/internal/model"
)

func itemsWithCategories(categories ...string) []model.MenuItem {
	items := make([]model.MenuItem, 0, len(categories))
	for i, c := range categories {
		items = append(items, model.MenuItem{ID: int64(i + 1), Name: c, Category: c})
	}
	return items
}

func TestResolveCategoriesCustomTypesWin(t *testing.T) {
	r := model.Restaurant{
		CustomTypes: []string{"Soups", "Grill", "Drinks"},
		MongoURI:    "mongodb://localhost/menus",
	}
	items := itemsWithCategories("starters", "Desserts")

	got := ResolveCategories(r, items)
	want := []string{"Soups", "Grill", "Drinks"}
	if !slices.Equal(got, want) {
		t.Errorf("ResolveCategories = %v, want %v", got, want)
	}

	// The result must not alias the restaurant's slice.
	got[0] = "changed"
	if r.CustomTypes[0] != "Soups" {
		t.Error("ResolveCategories returned the restaurant's own slice")
	}
}

func TestResolveCategoriesDerivedFromItems(t *testing.T) {
	r := model.Restaurant{MongoURI: "mongodb://localhost/menus"}

	tests := []struct {
		name  string
		items []model.MenuItem
		want  []string
	}{
		{
			name:  "case and whitespace variants collapse",
			items: itemsWithCategories("starters", "Starters", "STARTERS", " starters "),
			want:  []string{"Starters"},
		},
		{
			name:  "separators collapse",
			items: itemsWithCategories("  main-course ", "Main_Course", "main   course"),
			want:  []string{"Main Course"},
		},
		{
			name:  "first occurrence order",
			items: itemsWithCategories("desserts", "starters", "Desserts", "hot-drinks"),
			want:  []string{"Desserts", "Starters", "Hot Drinks"},
		},
		{
			name:  "blank categories skipped",
			items: itemsWithCategories("", "   ", "soups"),
			want:  []string{"Soups"},
		},
		{
			name:  "only blank categories falls back",
			items: itemsWithCategories("", " \t "),
			want:  DefaultCategories,
		},
		{
			name:  "no items falls back",
			items: nil,
			want:  DefaultCategories,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCategories(r, tt.items)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ResolveCategories = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCategoriesDefaults(t *testing.T) {
	// Without an external source, item categories are not consulted.
	r := model.Restaurant{}
	got := ResolveCategories(r, itemsWithCategories("soups"))
	if !slices.Equal(got, DefaultCategories) {
		t.Errorf("ResolveCategories = %v, want %v", got, DefaultCategories)
	}

	got = ResolveCategories(r, nil)
	if !slices.Equal(got, []string{"Starters", "Main Course", "Desserts", "Beverages"}) {
		t.Errorf("ResolveCategories = %v, want the default list", got)
	}

	got[0] = "changed"
	if DefaultCategories[0] != "Starters" {
		t.Error("ResolveCategories returned the shared default slice")
	}
}

func TestTitleCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"starters", "Starters"},
		{"  main-course ", "Main Course"},
		{"Main_Course", "Main Course"},
		{"HOT - drinks", "Hot Drinks"},
		{"čevapi", "Čevapi"},
		{"", ""},
		{" -_ ", ""},
	}

	for _, tt := range tests {
		if got := TitleCategory(tt.input); got != tt.want {
			t.Errorf("TitleCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Main Course", "main course"},
		{" Main--Course_ ", "main course"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeLabel(tt.input); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanLabels(t *testing.T) {
	got := CleanLabels([]string{" Starters ", "", "mains", "STARTERS", "  ", "Desserts"})
	want := []string{"Starters", "mains", "Desserts"}
	if !slices.Equal(got, want) {
		t.Errorf("CleanLabels = %q, want %q", got, want)
	}

	if got := CleanLabels(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

package menu

import "github.com/erazemk/jedilnik/internal/model"

// View is everything the panel needs to render a restaurant's menu page.
type View struct {
	Categories []string         `json:"categories"`
	Items      []model.MenuItem `json:"items"`
	Buckets    []Bucket         `json:"buckets"`
	Total      int              `json:"total"`
	Matched    int              `json:"matched"`
	Unmatched  int              `json:"unmatched"`
}

// BuildView resolves the categories, filters and sorts the items and
// partitions the result.
func BuildView(r model.Restaurant, items []model.MenuItem, q Query) View {
	categories := ResolveCategories(r, items)
	filtered := FilterAndSort(items, q)

	return View{
		Categories: categories,
		Items:      filtered,
		Buckets:    Partition(categories, filtered, q.SearchActive()),
		Total:      len(items),
		Matched:    len(filtered),
		Unmatched:  len(Unmatched(categories, filtered)),
	}
}

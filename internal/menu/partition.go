package menu

import "github.com/erazemk/jedilnik/internal/model"

// EmptyBucketPlaceholder is shown for a category with no items.
const EmptyBucketPlaceholder = "No items in this category"

// Bucket is the set of items displayed under one category.
type Bucket struct {
	Category    string           `json:"category"`
	Normalized  string           `json:"normalized"`
	Items       []model.MenuItem `json:"items"`
	Placeholder string           `json:"placeholder,omitempty"`
}

// Partition groups items into one bucket per category, in category order.
//
// Membership is an exact match on the trimmed, lower-cased category, so
// "Main Courses" never lands in "Main Course". Items matching no category
// are left out of every bucket. With hideEmpty set, empty buckets are
// dropped instead of carrying a placeholder.
func Partition(categories []string, items []model.MenuItem, hideEmpty bool) []Bucket {
	buckets := make([]Bucket, 0, len(categories))
	for _, category := range categories {
		key := bucketKey(category)
		bucket := Bucket{
			Category:   category,
			Normalized: NormalizeLabel(category),
			Items:      []model.MenuItem{},
		}
		for _, item := range items {
			itemKey := bucketKey(item.Category)
			if itemKey != "" && itemKey == key {
				bucket.Items = append(bucket.Items, item)
			}
		}

		if len(bucket.Items) == 0 {
			if hideEmpty {
				continue
			}
			bucket.Placeholder = EmptyBucketPlaceholder
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// Unmatched returns the items Partition leaves out of every bucket.
func Unmatched(categories []string, items []model.MenuItem) []model.MenuItem {
	keys := make(map[string]bool, len(categories))
	for _, c := range categories {
		keys[bucketKey(c)] = true
	}

	var out []model.MenuItem
	for _, item := range items {
		key := bucketKey(item.Category)
		if key == "" || !keys[key] {
			out = append(out, item)
		}
	}
	return out
}

package product

import "strings"

// CategoryAll is the category value that disables category filtering.
const CategoryAll = "all"

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	// Category must match exactly when set.
	Category string
	// Search must be contained in the title, ignoring case, when set.
	Search string
}

// Normalize trims the filter and maps the "all" category to no filter.
func (f Filter) Normalize() Filter {
	f.Category = strings.TrimSpace(f.Category)
	if f.Category == CategoryAll {
		f.Category = ""
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Matches reports whether p satisfies both predicates of a normalized filter.
func (f Filter) Matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

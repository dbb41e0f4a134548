// views/pipeline.go
//
// The filter → sort → paginate pipeline applied to every list in the
// dashboard (assets, users, departments, asset types, roles). Handlers feed
// it the role-scoped slice; the pipeline never widens visibility.
package views

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PageSize is fixed across every list view.
const PageSize = 10

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Vietnamese, collate.IgnoreCase)
)

// Compare orders strings with locale collation so accented characters sort
// correctly instead of by byte value. The collator buffer is not safe for
// concurrent use.
func Compare(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// Search keeps items whose configured fields contain the term,
// case-insensitively. An empty term keeps everything.
func Search[T any](items []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Filter keeps items matching the predicate. Categorical filters are
// AND-combined by chaining calls.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortByKey sorts a copy of items by a string key with locale collation.
func SortByKey[T any](items []T, key func(T) string, dir Direction) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		c := Compare(key(out[i]), key(out[j]))
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// SortByLess sorts a copy of items with an arbitrary less function, for
// numeric or date columns.
func SortByLess[T any](items []T, less func(a, b T) bool, dir Direction) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Page is one page of a filtered, sorted collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	// HasPrev/HasNext drive the navigation buttons: at a boundary the button
	// is disabled, never a wraparound.
	HasPrev bool `json:"hasPrev"`
	HasNext bool `json:"hasNext"`
}

// Paginate slices items into the requested 1-based page. Out-of-range pages
// clamp to the nearest valid page; an empty collection yields page 1 of 1
// with no items.
func Paginate[T any](items []T, page int) Page[T] {
	totalItems := len(items)
	totalPages := (totalItems + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		TotalPages: totalPages,
		TotalItems: totalItems,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Window returns the page numbers to render: first, last, current±1, with
// Ellipsis filling each gap.
func (p Page[T]) Window() []int {
	if p.TotalPages <= 1 {
		return []int{1}
	}
	var out []int
	prevShown := 0
	for i := 1; i <= p.TotalPages; i++ {
		show := i == 1 || i == p.TotalPages || (i >= p.Number-1 && i <= p.Number+1)
		if !show {
			continue
		}
		if prevShown != 0 && i-prevShown > 1 {
			out = append(out, Ellipsis)
		}
		out = append(out, i)
		prevShown = i
	}
	return out
}

// Query captures every pipeline input for one list view.
type Query struct {
	Search  string
	Sort    string
	Dir     Direction
	Page    int
	Filters map[string]string
}

// Normalize clamps the direction and resets the page to 1 whenever any
// filter or sort input differs from the previous query. Only an unchanged
// query keeps its page.
func (q Query) Normalize(prev Query) Query {
	if q.Dir != Descending {
		q.Dir = Ascending
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if !q.sameInputs(prev) {
		q.Page = 1
	}
	return q
}

func (q Query) sameInputs(prev Query) bool {
	if q.Search != prev.Search || q.Sort != prev.Sort || q.Dir != prev.Dir {
		return false
	}
	if len(q.Filters) != len(prev.Filters) {
		return false
	}
	for k, v := range q.Filters {
		if prev.Filters[k] != v {
			return false
		}
	}
	return true
}

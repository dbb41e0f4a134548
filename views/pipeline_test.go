package views

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmgt/models"
)

func demoAssets() []models.Asset {
	out := make([]models.Asset, 0, 25)
	for i := 1; i <= 25; i++ {
		code := fmt.Sprintf("PR-%03d", i)
		if i <= 13 {
			code = fmt.Sprintf("LT-%03d", i)
		}
		out = append(out, models.Asset{
			ID:    fmt.Sprintf("a%d", i),
			Code:  code,
			Name:  fmt.Sprintf("Asset %02d", i),
			Value: float64(i * 100),
		})
	}
	return out
}

func TestSearchNarrowsByAnyField(t *testing.T) {
	assets := demoAssets()
	fields := func(a models.Asset) []string { return []string{a.Name, a.Code} }

	assert.Len(t, Search(assets, "LT", fields), 13)
	assert.Len(t, Search(assets, "lt-0", fields), 13)
	assert.Len(t, Search(assets, "PR-020", fields), 1)
	assert.Len(t, Search(assets, "", fields), 25)
	assert.Empty(t, Search(assets, "zzz", fields))
}

func TestFilterAndSearchCompose(t *testing.T) {
	assets := demoAssets()
	fields := func(a models.Asset) []string { return []string{a.Code} }

	narrowed := Search(assets, "LT", fields)
	narrowed = Filter(narrowed, func(a models.Asset) bool { return a.Value >= 500 })
	assert.Len(t, narrowed, 9) // LT-005 .. LT-013
}

func TestPaginateSplitsIntoFixedPages(t *testing.T) {
	assets := demoAssets()
	filtered := Search(assets, "LT", func(a models.Asset) []string { return []string{a.Code} })
	require.Len(t, filtered, 13)

	p1 := Paginate(filtered, 1)
	assert.Len(t, p1.Items, 10)
	assert.Equal(t, 2, p1.TotalPages)
	assert.Equal(t, 13, p1.TotalItems)
	assert.False(t, p1.HasPrev)
	assert.True(t, p1.HasNext)

	p2 := Paginate(filtered, 2)
	assert.Len(t, p2.Items, 3)
	assert.True(t, p2.HasPrev)
	assert.False(t, p2.HasNext)
}

func TestPaginateClampsOutOfRange(t *testing.T) {
	assets := demoAssets()

	low := Paginate(assets, 0)
	assert.Equal(t, 1, low.Number)

	high := Paginate(assets, 99)
	assert.Equal(t, 3, high.Number)
	assert.Len(t, high.Items, 5)

	empty := Paginate([]models.Asset{}, 4)
	assert.Equal(t, 1, empty.Number)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Empty(t, empty.Items)
	assert.False(t, empty.HasPrev)
	assert.False(t, empty.HasNext)
}

func TestWindowShowsNeighborsWithEllipses(t *testing.T) {
	many := make([]models.Asset, 95) // 10 pages

	p := Paginate(many, 5)
	assert.Equal(t, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}, p.Window())

	first := Paginate(many, 1)
	assert.Equal(t, []int{1, 2, Ellipsis, 10}, first.Window())

	last := Paginate(many, 10)
	assert.Equal(t, []int{1, Ellipsis, 9, 10}, last.Window())

	single := Paginate(make([]models.Asset, 7), 1)
	assert.Equal(t, []int{1}, single.Window())
}

func TestSortByKeyUsesCollation(t *testing.T) {
	items := []string{"đèn", "bàn", "Áo", "ghế", "an"}
	sorted := SortByKey(items, func(s string) string { return s }, Ascending)
	// Locale order: accented characters sort next to their base letters,
	// case-insensitively, instead of after "z".
	assert.Equal(t, []string{"an", "Áo", "bàn", "đèn", "ghế"}, sorted)

	desc := SortByKey(items, func(s string) string { return s }, Descending)
	assert.Equal(t, "an", desc[len(desc)-1])
}

func TestSortByLessNumeric(t *testing.T) {
	assets := []models.Asset{{Value: 30}, {Value: 10}, {Value: 20}}
	less := func(a, b models.Asset) bool { return a.Value < b.Value }

	asc := SortByLess(assets, less, Ascending)
	assert.Equal(t, []float64{10, 20, 30}, []float64{asc[0].Value, asc[1].Value, asc[2].Value})

	desc := SortByLess(assets, less, Descending)
	assert.Equal(t, []float64{30, 20, 10}, []float64{desc[0].Value, desc[1].Value, desc[2].Value})

	// The input slice is untouched.
	assert.Equal(t, float64(30), assets[0].Value)
}

func TestNormalizeResetsPageWhenInputsChange(t *testing.T) {
	prev := Query{Search: "LT", Sort: "name", Dir: Ascending, Page: 3, Filters: map[string]string{"status": "IN_USE"}}

	same := Query{Search: "LT", Sort: "name", Dir: Ascending, Page: 3, Filters: map[string]string{"status": "IN_USE"}}
	assert.Equal(t, 3, same.Normalize(prev).Page)

	searchChanged := same
	searchChanged.Search = "PR"
	assert.Equal(t, 1, searchChanged.Normalize(prev).Page)

	sortChanged := same
	sortChanged.Sort = "value"
	assert.Equal(t, 1, sortChanged.Normalize(prev).Page)

	filterChanged := Query{Search: "LT", Sort: "name", Dir: Ascending, Page: 3, Filters: map[string]string{"status": "IN_STOCK"}}
	assert.Equal(t, 1, filterChanged.Normalize(prev).Page)

	filterDropped := Query{Search: "LT", Sort: "name", Dir: Ascending, Page: 3, Filters: map[string]string{}}
	assert.Equal(t, 1, filterDropped.Normalize(prev).Page)
}

func TestNormalizeClampsDirectionAndPage(t *testing.T) {
	q := Query{Dir: "sideways", Page: -2}
	n := q.Normalize(q)
	assert.Equal(t, Ascending, n.Dir)
	assert.Equal(t, 1, n.Page)
}

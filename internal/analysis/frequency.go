package analysis

import (
	"sort"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// CategoryCount is one entry of a value-count table.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts the non-null values of col, most frequent first with
// ties broken alphabetically.
func ValueCounts(t *dataset.Table, col string) ([]CategoryCount, error) {
	vals, err := t.Strings(col)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, v := range vals {
		counts[v]++
	}
	return sortedCounts(counts), nil
}

// TopValues returns the n most frequent non-null values of col.
func TopValues(t *dataset.Table, col string, n int) ([]string, error) {
	vc, err := ValueCounts(t, col)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(vc) > n {
		vc = vc[:n]
	}
	out := make([]string, len(vc))
	for i, c := range vc {
		out[i] = c.Value
	}
	return out, nil
}

// ModelThreshold is the data viewer: with includeSmall it returns view
// unchanged, otherwise only rows whose model occurs at least threshold times
// within view. A view without a model column is returned unchanged.
func ModelThreshold(view *dataset.Table, threshold int, includeSmall bool) *dataset.Table {
	if includeSmall || !view.Has(dataset.ColModel) {
		return view
	}
	counts := make(map[string]int)
	for i := 0; i < view.Len(); i++ {
		if m, ok := view.Value(i, dataset.ColModel); ok {
			counts[m]++
		}
	}
	return view.Where(func(i int) bool {
		m, ok := view.Value(i, dataset.ColModel)
		return ok && counts[m] >= threshold
	})
}

func sortedCounts(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

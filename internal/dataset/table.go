package dataset

import (
	"math"
	"strconv"
	"strings"
	"sync"
)

// Well-known listing columns. Every one of them is optional.
const (
	ColModelYear = "model_year"
	ColType      = "type"
	ColCondition = "condition"
	ColPrice     = "price"
	ColOdometer  = "odometer"
	ColModel     = "model"
)

// Table is an immutable, ordered set of rows keyed by normalized column names.
// Null cells are stored as empty strings. Views produced by Subset, Select and
// Head share row storage with their source and must not be mutated.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string

	schemaOnce sync.Once
	schema     Schema
}

// NewTable builds a table from column names and rows. Rows shorter than the
// header are padded with nulls; longer rows are truncated.
func NewTable(columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	norm := make([][]string, len(rows))
	for i, r := range rows {
		rec := make([]string, len(cols))
		copy(rec, r)
		for j := range rec {
			if isNull(rec[j]) {
				rec[j] = ""
			}
		}
		norm[i] = rec
	}
	return newTable(cols, norm)
}

func newTable(columns []string, rows [][]string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{columns: columns, index: idx, rows: rows}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Value returns the cell at row i for col. ok is false when the column is
// absent or the cell is null.
func (t *Table) Value(i int, col string) (string, bool) {
	j, ok := t.index[col]
	if !ok {
		return "", false
	}
	v := t.rows[i][j]
	return v, v != ""
}

// Float returns the numeric value of the cell at row i for col.
func (t *Table) Float(i int, col string) (float64, bool) {
	v, ok := t.Value(i, col)
	if !ok {
		return 0, false
	}
	return ParseNumber(v)
}

// Strings returns the non-null values of col in row order.
func (t *Table) Strings(col string) ([]string, error) {
	j, ok := t.index[col]
	if !ok {
		return nil, columnMissing(col)
	}
	out := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		if r[j] != "" {
			out = append(out, r[j])
		}
	}
	return out, nil
}

// Floats returns the numeric, non-null values of col in row order.
func (t *Table) Floats(col string) ([]float64, error) {
	j, ok := t.index[col]
	if !ok {
		return nil, columnMissing(col)
	}
	out := make([]float64, 0, len(t.rows))
	for _, r := range t.rows {
		if r[j] == "" {
			continue
		}
		if x, ok := ParseNumber(r[j]); ok {
			out = append(out, x)
		}
	}
	return out, nil
}

// Subset returns a view with the rows at the given indices, in the given order.
func (t *Table) Subset(idx []int) *Table {
	rows := make([][]string, len(idx))
	for i, k := range idx {
		rows[i] = t.rows[k]
	}
	return newTable(t.columns, rows)
}

// Where returns the rows for which keep reports true.
func (t *Table) Where(keep func(i int) bool) *Table {
	rows := make([][]string, 0, len(t.rows))
	for i, r := range t.rows {
		if keep(i) {
			rows = append(rows, r)
		}
	}
	return newTable(t.columns, rows)
}

// Select projects the table onto cols. Unknown names are skipped, duplicates
// kept once.
func (t *Table) Select(cols []string) *Table {
	picked := make([]int, 0, len(cols))
	names := make([]string, 0, len(cols))
	seen := map[string]bool{}
	for _, c := range cols {
		j, ok := t.index[c]
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		picked = append(picked, j)
		names = append(names, c)
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rec := make([]string, len(picked))
		for k, j := range picked {
			rec[k] = r[j]
		}
		rows[i] = rec
	}
	return newTable(names, rows)
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.rows) {
		n = len(t.rows)
	}
	return newTable(t.columns, t.rows[:n:n])
}

// Schema describes which columns are present and usable. It is computed once
// per table.
func (t *Table) Schema() Schema {
	t.schemaOnce.Do(func() { t.schema = describe(t) })
	return t.schema
}

var nullTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"#n/a": true,
}

func isNull(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// ParseNumber parses plain and thousands-grouped numbers ("12500", "1,250.5",
// "$9,400"). Grouping commas are only accepted when a dot, if any, comes after them.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	if raw == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	if c := strings.LastIndex(raw, ","); c >= 0 {
		if d := strings.LastIndex(raw, "."); d >= 0 && d < c {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, ",", "")
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

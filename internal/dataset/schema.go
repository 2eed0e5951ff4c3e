package dataset

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindEmpty       Kind = "empty"
)

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
}

// Schema lists the columns present in a table. Filters and charts query it
// before touching a column so that absent or empty columns disable the
// feature instead of failing.
type Schema struct {
	Columns []ColumnInfo `json:"columns"`
	byName  map[string]int
}

// Has reports whether the column is present.
func (s Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Usable reports whether the column is present and holds at least one non-null value.
func (s Schema) Usable(name string) bool {
	c, ok := s.Info(name)
	return ok && c.NonNull > 0
}

// Numeric reports whether the column is usable and every non-null value is numeric.
func (s Schema) Numeric(name string) bool {
	c, ok := s.Info(name)
	return ok && c.Kind == KindNumeric
}

// Info returns the description of the named column.
func (s Schema) Info(name string) (ColumnInfo, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ColumnInfo{}, false
	}
	return s.Columns[i], true
}

// HasAll reports whether every named column is usable.
func (s Schema) HasAll(names ...string) bool {
	for _, n := range names {
		if !s.Usable(n) {
			return false
		}
	}
	return true
}

func describe(t *Table) Schema {
	s := Schema{Columns: make([]ColumnInfo, len(t.columns)), byName: make(map[string]int, len(t.columns))}
	for j, name := range t.columns {
		info := ColumnInfo{Name: name}
		numeric := true
		for _, r := range t.rows {
			v := r[j]
			if v == "" {
				info.Missing++
				continue
			}
			info.NonNull++
			if numeric {
				if _, ok := ParseNumber(v); !ok {
					numeric = false
				}
			}
		}
		switch {
		case info.NonNull == 0:
			info.Kind = KindEmpty
		case numeric:
			info.Kind = KindNumeric
		default:
			info.Kind = KindCategorical
		}
		s.Columns[j] = info
		s.byName[name] = j
	}
	return s
}

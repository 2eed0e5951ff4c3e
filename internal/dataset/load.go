package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadOptions controls how the listings file is read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
}

// Load reads a delimited file into a Table. Column names are trimmed and
// lowercased. Any failure to open or parse the file wraps ErrDataUnavailable.
func Load(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDataUnavailable, path, err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := Read(f, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read parses delimited text with a header row.
func Read(r io.Reader, opt LoadOptions) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no header row", ErrDataUnavailable)
		}
		return nil, fmt.Errorf("%w: read header: %w", ErrDataUnavailable, err)
	}
	cols := normalizeHeader(header)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: read row %d: %w", ErrDataUnavailable, len(rows)+1, err)
		}
		if len(rec) > len(cols) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrDataUnavailable, len(rows)+1, len(rec), len(cols))
		}
		rows = append(rows, rec)
	}
	return NewTable(cols, rows), nil
}

// normalizeHeader trims and lowercases names. Blank names become
// "unnamed: N" and repeated names get a ".K" suffix.
func normalizeHeader(header []string) []string {
	cols := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			name = fmt.Sprintf("unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		cols[i] = name
	}
	return cols
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

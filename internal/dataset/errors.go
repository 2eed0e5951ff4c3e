package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable indicates the listings file is missing or could not be parsed.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrColumnMissing indicates a referenced column is absent from the table.
	ErrColumnMissing = errors.New("column missing")
	// ErrEmptyResult indicates an operation produced zero rows.
	ErrEmptyResult = errors.New("empty result")
)

func columnMissing(name string) error {
	return fmt.Errorf("%w: %s", ErrColumnMissing, name)
}

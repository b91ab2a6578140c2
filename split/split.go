// Package split cuts parallel columns into two contiguous parts.
package split

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrRatio is returned for a ratio that does not leave both sides usable.
	ErrRatio = errors.New("split: invalid ratio")

	// ErrLength is returned when columns differ in length.
	ErrLength = errors.New("split: columns differ in length")
)

// Column is one named field of a row set.
type Column interface {
	Len() int
	Slice(i, j int) Column
}

// Slice adapts a plain slice to Column.
type Slice[T any] []T

func (s Slice[T]) Len() int {
	return len(s)
}

// Slice returns rows [i, j). Appending to the result never writes into
// rows past j.
func (s Slice[T]) Slice(i, j int) Column {
	return s[i:j:j]
}

// Columns are parallel fields keyed by name. Row i of every column belongs
// to the same record.
type Columns map[string]Column

// Len returns the common length of the columns.
func (c Columns) Len() (int, error) {
	n := -1
	for _, name := range c.names() {
		l := c[name].Len()
		if n < 0 {
			n = l
			continue
		}
		if l != n {
			return 0, fmt.Errorf("%w: %q has %d rows, want %d", ErrLength, name, l, n)
		}
	}
	return max(n, 0), nil
}

func (c Columns) names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Split returns the first floor(ratio*N) rows of every column as train and
// the remaining rows as dev.
func Split(c Columns, ratio float64) (train, dev Columns, err error) {
	n, err := c.Len()
	if err != nil {
		return nil, nil, err
	}

	if !(ratio >= 0 && ratio <= 1) {
		return nil, nil, fmt.Errorf("%w: %v is outside (0,1)", ErrRatio, ratio)
	}

	idx := int(ratio * float64(n))
	if (ratio == 0 || ratio == 1) && (idx == 0 || idx == n) {
		return nil, nil, fmt.Errorf("%w: %v leaves one side empty", ErrRatio, ratio)
	}

	train = make(Columns, len(c))
	dev = make(Columns, len(c))
	for name, col := range c {
		train[name] = col.Slice(0, idx)
		dev[name] = col.Slice(idx, n)
	}

	return train, dev, nil
}

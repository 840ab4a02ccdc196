package tables

import (
	"errors"
	"fmt"
	"sort"
)

// Lookup failures are sentinel values so callers can branch with errors.Is.
var (
	// ErrKeyNotFound reports a missing column header or term key.
	ErrKeyNotFound = errors.New("tables: key not found")
	// ErrIndexOutOfRange reports a positional lookup outside the table width.
	ErrIndexOutOfRange = errors.New("tables: column index out of range")
	// ErrInvalidSelector reports a ColumnSelector that is neither ByIndex nor ByKey.
	ErrInvalidSelector = errors.New("tables: invalid column selector")
)

// ColumnSelector names a charge-off column either by position or by header
// key. The zero value selects nothing; construct one with ByIndex or ByKey.
// ByIndex(0) is a valid selection of the first column.
type ColumnSelector struct {
	kind  selectorKind
	index int
	key   string
}

type selectorKind uint8

const (
	selectorUnset selectorKind = iota
	selectorIndex
	selectorKey
)

// ByIndex selects the i-th column (zero-based) in table order.
func ByIndex(i int) ColumnSelector {
	return ColumnSelector{kind: selectorIndex, index: i}
}

// ByKey selects a column by its header name.
func ByKey(key string) ColumnSelector {
	return ColumnSelector{kind: selectorKey, key: key}
}

// IsZero reports whether the selector was never set.
func (s ColumnSelector) IsZero() bool {
	return s.kind == selectorUnset
}

func (s ColumnSelector) String() string {
	switch s.kind {
	case selectorIndex:
		return fmt.Sprintf("column #%d", s.index)
	case selectorKey:
		return fmt.Sprintf("column %q", s.key)
	default:
		return "unset column"
	}
}

// ChargeOffTable is a rectangular frame of monthly charge-off rate curves,
// one named column per term/grade cohort, addressable by header or by
// position in table order.
type ChargeOffTable struct {
	names []string
	cols  [][]float64
	index map[string]int
}

// NewChargeOffTable builds a table from parallel header names and columns.
// Headers must be unique and columns equally long; column order is kept so
// positional selection stays meaningful.
func NewChargeOffTable(names []string, cols [][]float64) (*ChargeOffTable, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("tables: %d names for %d columns", len(names), len(cols))
	}

	t := &ChargeOffTable{
		names: make([]string, 0, len(names)),
		cols:  make([][]float64, 0, len(cols)),
		index: make(map[string]int, len(names)),
	}
	rows := -1
	for i, name := range names {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("tables: duplicate column %q", name)
		}
		if rows < 0 {
			rows = len(cols[i])
		} else if len(cols[i]) != rows {
			return nil, fmt.Errorf("tables: column %q has %d rows, want %d", name, len(cols[i]), rows)
		}
		t.index[name] = i
		t.names = append(t.names, name)
		t.cols = append(t.cols, append([]float64(nil), cols[i]...))
	}
	return t, nil
}

// Width returns the number of columns.
func (t *ChargeOffTable) Width() int {
	return len(t.cols)
}

// Rows returns the number of entries per column.
func (t *ChargeOffTable) Rows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

// Names returns the column headers in table order.
func (t *ChargeOffTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Column returns a copy of the named rate curve. Callers may mutate the
// returned slice freely; the table itself is shared and read-only.
func (t *ChargeOffTable) Column(key string) ([]float64, error) {
	i, ok := t.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: charge-off column %q", ErrKeyNotFound, key)
	}
	return append([]float64(nil), t.cols[i]...), nil
}

// ColumnAt returns a copy of the i-th rate curve in table order.
func (t *ChargeOffTable) ColumnAt(i int) ([]float64, error) {
	if i < 0 || i >= len(t.cols) {
		return nil, fmt.Errorf("%w: %d of %d columns", ErrIndexOutOfRange, i, len(t.cols))
	}
	return append([]float64(nil), t.cols[i]...), nil
}

// Select resolves sel against the table.
func (t *ChargeOffTable) Select(sel ColumnSelector) ([]float64, error) {
	switch sel.kind {
	case selectorIndex:
		return t.ColumnAt(sel.index)
	case selectorKey:
		return t.Column(sel.key)
	default:
		return nil, ErrInvalidSelector
	}
}

// PrepayTable maps a loan term in months to its prepayment speed curve.
// Lookups are exact; there is no interpolation between terms.
type PrepayTable struct {
	cols map[int][]float64
}

// NewPrepayTable copies the given term to speed-curve mapping into a table.
func NewPrepayTable(cols map[int][]float64) *PrepayTable {
	t := &PrepayTable{cols: make(map[int][]float64, len(cols))}
	for term, col := range cols {
		t.cols[term] = append([]float64(nil), col...)
	}
	return t
}

// Terms returns the available term keys in ascending order.
func (t *PrepayTable) Terms() []int {
	terms := make([]int, 0, len(t.cols))
	for term := range t.cols {
		terms = append(terms, term)
	}
	sort.Ints(terms)
	return terms
}

// Column returns a copy of the speed curve for an exact term match.
func (t *PrepayTable) Column(term int) ([]float64, error) {
	col, ok := t.cols[term]
	if !ok {
		return nil, fmt.Errorf("%w: prepay term %d", ErrKeyNotFound, term)
	}
	return append([]float64(nil), col...), nil
}

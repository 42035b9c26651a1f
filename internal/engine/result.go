package engine

import (
	"time"

	"db-refcheck/internal/reference"
)

// MissingReferences is the outcome of checking one Reference: the distinct
// origin value tuples with no destination row, or the failure that
// prevented the check.
type MissingReferences struct {
	Reference *reference.Reference
	// Columns names the origin columns each tuple in Values holds.
	Columns []string
	Values  [][]any
	Err     error
	// AffectedRows is the number of origin rows holding one of Values, or
	// -1 until CountAffectedRows has run.
	AffectedRows int64
	Elapsed      time.Duration
}

func (m *MissingReferences) Failed() bool {
	return m.Err != nil
}

// Clean reports a successful check that found nothing.
func (m *MissingReferences) Clean() bool {
	return m.Err == nil && len(m.Values) == 0
}

func (m *MissingReferences) String() string {
	return m.Reference.String()
}

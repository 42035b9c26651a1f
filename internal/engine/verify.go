package engine

import (
	"context"

	"db-refcheck/internal/dialect"
	"db-refcheck/internal/errs"
)

// CountAffectedRows counts the origin rows holding one of m's missing
// tuples, in batches, and stores the total on m.
func (dt *Detector) CountAffectedRows(ctx context.Context, m *MissingReferences) (int64, error) {
	if m.Failed() {
		return -1, m.Err
	}
	origin := m.Reference.Origin
	cols := qualifiedColumns(dt.d, origin)

	var total int64
	for _, batch := range dialect.Batches(m.Values, dialect.MaxStatementTuples) {
		where := dialect.Where(origin.Condition, dialect.InPredicate(dt.d, cols, batch))
		query := dialect.CountRows(dt.d, origin.Table.Name, origin.Alias(), where)

		var n int64
		if err := dt.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return -1, errs.Wrap(errs.ErrKindCheck, "counting rows of "+m.Reference.String(), err)
		}
		total += n
	}
	m.AffectedRows = total
	return total, nil
}

// CountAll fills AffectedRows on every result holding missing values.
// Counting failures are logged and leave the count unknown.
func (dt *Detector) CountAll(ctx context.Context, results []*MissingReferences) {
	for _, m := range results {
		if m.Failed() || len(m.Values) == 0 {
			continue
		}
		if _, err := dt.CountAffectedRows(ctx, m); err != nil {
			dt.log.WarnErr(err, "cannot count affected rows")
		}
	}
}

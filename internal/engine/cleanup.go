package engine

import (
	"context"

	"db-refcheck/internal/dialect"
	"db-refcheck/internal/errs"
	"db-refcheck/internal/reference"
)

// dmlColumns are the unqualified origin value columns, usable whether or not
// the engine accepts an alias in DELETE and UPDATE.
func dmlColumns(d dialect.Dialect, q *reference.Query) []string {
	cols := q.ValueColumns()
	out := make([]string, len(cols))
	for i, c := range cols {
		if col := q.Table.Column(c); col != nil {
			c = col.Name
		}
		out[i] = dialect.Column(d, "", c)
	}
	return out
}

func qualifiedColumns(d dialect.Dialect, q *reference.Query) []string {
	cols := q.ValueColumns()
	out := make([]string, len(cols))
	for i, c := range cols {
		if col := q.Table.Column(c); col != nil {
			c = col.Name
		}
		out[i] = dialect.Column(d, q.Alias(), c)
	}
	return out
}

// CleanupStatements renders the DELETE or UPDATE statements fixing m, at
// most MaxStatementTuples tuples per statement. Unknown fix actions and
// failed or clean results yield none.
func CleanupStatements(d dialect.Dialect, m *MissingReferences) []string {
	if m.Failed() || len(m.Values) == 0 {
		return nil
	}
	r := m.Reference
	origin := r.Origin
	cols := dmlColumns(d, origin)

	var sets []dialect.Assignment
	if r.FixAction == reference.FixUpdate {
		for _, c := range origin.ValueColumns() {
			a := dialect.Assignment{Column: c, Class: dialect.ClassOpaque}
			if col := origin.Table.Column(c); col != nil {
				a = dialect.Assignment{Column: col.Name, Class: col.Class}
			}
			sets = append(sets, a)
		}
	}

	var out []string
	for _, batch := range dialect.Batches(m.Values, dialect.MaxStatementTuples) {
		where := dialect.Where(origin.Condition, dialect.InPredicate(d, cols, batch))
		switch r.FixAction {
		case reference.FixDelete:
			out = append(out, dialect.Delete(d, origin.Table.Name, origin.Alias(), where))
		case reference.FixUpdate:
			out = append(out, dialect.Update(d, origin.Table.Name, origin.Alias(), sets, where))
		default:
			return nil
		}
	}
	return out
}

// SelectStatements renders SELECT statements listing the origin rows holding
// the missing values, for manual inspection.
func SelectStatements(d dialect.Dialect, m *MissingReferences) []string {
	if m.Failed() || len(m.Values) == 0 {
		return nil
	}
	origin := m.Reference.Origin
	cols := qualifiedColumns(d, origin)

	var out []string
	for _, batch := range dialect.Batches(m.Values, dialect.MaxStatementTuples) {
		where := dialect.Where(origin.Condition, dialect.InPredicate(d, cols, batch))
		out = append(out, dialect.Select(d, false, []string{origin.Alias() + ".*"}, origin.Table.Name, origin.Alias(), where))
	}
	return out
}

// ExecuteCleanup runs the cleanup statements of m in one transaction and
// returns the number of rows changed. Any failure rolls back and is returned.
func (dt *Detector) ExecuteCleanup(ctx context.Context, m *MissingReferences) (int64, error) {
	stmts := CleanupStatements(dt.d, m)
	if len(stmts) == 0 {
		return 0, nil
	}

	tx, err := dt.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.Wrap(errs.ErrKindCleanup, "begin cleanup of "+m.Reference.String(), err)
	}

	var total int64
	for _, stmt := range stmts {
		res, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			_ = tx.Rollback()
			dt.log.With().Str("reference", m.Reference.String()).Str("sql", stmt).Logger().ErrorErr(err, "cleanup statement failed")
			return 0, errs.Wrap(errs.ErrKindCleanup, "cleanup of "+m.Reference.String(), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errs.Wrap(errs.ErrKindCleanup, "commit cleanup of "+m.Reference.String(), err)
	}
	dt.log.Infof("%s: %s changed %d rows", m.Reference, m.Reference.FixAction, total)
	return total, nil
}

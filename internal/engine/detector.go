package engine

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"db-refcheck/internal/dialect"
	"db-refcheck/internal/errs"
	"db-refcheck/internal/logger"
	"db-refcheck/internal/reference"
)

// Options tune the detector.
type Options struct {
	// Workers bounds concurrent checks; zero means GOMAXPROCS.
	Workers int
	// NullTolerant drops tuples made only of NULL, zero and blank values.
	NullTolerant bool
	// IgnoreRange extends the null-tolerant filter to a numeric interval.
	IgnoreRange *Range
	// QueryTimeout bounds each check; zero means no limit.
	QueryTimeout time.Duration
	Logger       *logger.Logger
}

func DefaultOptions() Options {
	return Options{Workers: runtime.GOMAXPROCS(0), NullTolerant: true}
}

// Detector runs reference checks against one database.
type Detector struct {
	db   *sql.DB
	d    dialect.Dialect
	opts Options
	log  *logger.Logger
}

func NewDetector(db *sql.DB, d dialect.Dialect, opts Options) *Detector {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}
	return &Detector{db: db, d: d, opts: opts, log: log}
}

func (dt *Detector) Dialect() dialect.Dialect {
	return dt.d
}

// Check runs every checkable Reference on a bounded pool and returns one
// result per checked Reference in input order. A failing check is recorded
// in its result and never stops the others. onProgress, when set, is called
// once per finished check.
func (dt *Detector) Check(ctx context.Context, refs []*reference.Reference, onProgress func()) []*MissingReferences {
	var checkable []*reference.Reference
	for _, r := range refs {
		if r.Checkable() {
			checkable = append(checkable, r)
		}
	}

	results := make([]*MissingReferences, len(checkable))
	var g errgroup.Group
	g.SetLimit(dt.opts.Workers)

	for i, r := range checkable {
		i, r := i, r
		g.Go(func() error {
			results[i] = dt.CheckOne(ctx, r)
			if onProgress != nil {
				onProgress()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, m := range results {
		if m.Failed() {
			failed++
		}
	}
	dt.log.Infof("Checked %d references (%d failed)", len(results), failed)
	return results
}

// CheckOne runs a single Reference.
func (dt *Detector) CheckOne(ctx context.Context, r *reference.Reference) *MissingReferences {
	m := &MissingReferences{Reference: r, Columns: r.Origin.ValueColumns(), AffectedRows: -1}
	start := time.Now()
	defer func() { m.Elapsed = time.Since(start) }()

	if !r.Checkable() {
		m.Err = errs.Newf(errs.ErrKindInvalidInput, "reference %s is not checkable", r)
		return m
	}

	if dt.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dt.opts.QueryTimeout)
		defer cancel()
	}

	query := r.CheckSQL(dt.d)
	values, err := dt.collect(ctx, r, query)
	if err != nil {
		m.Err = errs.Wrap(errs.ErrKindCheck, "checking "+r.String(), err)
		dt.log.With().Str("reference", r.String()).Str("sql", query).Logger().ErrorErr(err, "reference check failed")
		return m
	}
	m.Values = values
	if len(values) > 0 {
		dt.log.Debugf("%s: %d missing", r, len(values))
	}
	return m
}

func (dt *Detector) collect(ctx context.Context, r *reference.Reference, query string) ([][]any, error) {
	rows, err := dt.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := r.Origin.ValueColumns()
	classes := make([]dialect.ValueClass, len(cols))
	for i, c := range cols {
		classes[i] = dialect.ClassOpaque
		if col := r.Origin.Table.Column(c); col != nil {
			classes[i] = col.Class
		}
	}

	seen := make(map[string]bool)
	var out [][]any
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i := range raw {
			raw[i] = normalizeValue(raw[i], classes[i])
		}
		if dt.opts.NullTolerant && ignorableTuple(raw, dt.opts.IgnoreRange) {
			continue
		}
		k := tupleKey(raw)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, raw)
	}
	return out, rows.Err()
}

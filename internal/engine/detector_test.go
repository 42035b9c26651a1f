package engine_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"db-refcheck/internal/config"
	"db-refcheck/internal/dialect"
	"db-refcheck/internal/engine"
	"db-refcheck/internal/errs"
	"db-refcheck/internal/logger"
	"db-refcheck/internal/reference"
	"db-refcheck/internal/schema"
)

func numTable(name, pk string, cols ...string) *schema.Table {
	var columns []*schema.Column
	for _, c := range cols {
		columns = append(columns, &schema.Column{Name: c, Class: dialect.ClassNumber})
	}
	var pks []string
	if pk != "" {
		pks = []string{pk}
	}
	return schema.NewTable(name, columns, pks)
}

func orderRef(fix reference.FixAction) *reference.Reference {
	r := reference.NewReference(
		reference.NewQuery(numTable("Order", "id", "id", "customerId"), []string{"customerId"}, nil, ""),
		reference.NewQuery(numTable("Customer", "id", "id"), []string{"id"}, nil, ""), false)
	r.FixAction = fix
	return r
}

func detectorOpts() engine.Options {
	opts := engine.DefaultOptions()
	opts.Logger = logger.Nop()
	return opts
}

func TestCheck_EndToEndSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE "Customer" (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE "Order" (id INTEGER PRIMARY KEY, customerId INTEGER)`,
		`INSERT INTO "Customer" (id) VALUES (1)`,
		`INSERT INTO "Order" (id, customerId) VALUES (1, 99), (2, 1), (3, NULL), (4, 0)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	ctx := context.Background()
	d := dialect.Get(dialect.SQLite)
	cat, err := schema.New(ctx, db, d, schema.Options{Logger: logger.Nop()})
	require.NoError(t, err)
	require.NotNil(t, cat.Table("Order"))
	assert.Equal(t, "id", cat.Table("Order").PrimaryKey)

	cfg, err := config.Parse([]byte(`
references:
  - origin: {table: Order, columns: [customerId]}
    dest: {table: Customer, columns: [id]}
`), "")
	require.NoError(t, err)

	set, err := reference.NewExpander(cat, reference.Options{CheckUndefinedTables: true, SkipEmptyTables: true, Logger: logger.Nop()}).
		Expand(ctx, cfg.References)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	det := engine.NewDetector(db, d, detectorOpts())
	results := det.Check(ctx, set.Items(), nil)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, [][]any{{int64(99)}}, results[0].Values)
	assert.Equal(t, "Order.customerId => Customer.id", results[0].String())

	n, err := det.CountAffectedRows(ctx, results[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), results[0].AffectedRows)

	// orphaned orders belong to no customer and go away
	results[0].Reference.FixAction = reference.FixDelete
	changed, err := det.ExecuteCleanup(ctx, results[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	again := det.Check(ctx, set.Items(), nil)
	assert.True(t, again[0].Clean())
}

func TestCheck_NullTolerance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"customerId"}).
			AddRow(int64(0)).
			AddRow(nil).
			AddRow("").
			AddRow(int64(7)).
			AddRow([]byte("7"))
	}
	mock.ExpectQuery("SELECT DISTINCT").WillReturnRows(rows())
	mock.ExpectQuery("SELECT DISTINCT").WillReturnRows(rows())

	d := dialect.Get(dialect.MySQL)
	r := orderRef(reference.FixUnknown)

	tolerant := engine.NewDetector(db, d, detectorOpts())
	m := tolerant.CheckOne(context.Background(), r)
	require.NoError(t, m.Err)
	assert.Equal(t, [][]any{{int64(7)}}, m.Values)

	opts := detectorOpts()
	opts.NullTolerant = false
	strict := engine.NewDetector(db, d, opts)
	m = strict.CheckOne(context.Background(), r)
	require.NoError(t, m.Err)
	assert.Len(t, m.Values, 4)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheck_IgnoreRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT DISTINCT").WillReturnRows(sqlmock.NewRows([]string{"customerId"}).
		AddRow(int64(-1)).AddRow(int64(5)).AddRow(int64(11)))

	opts := detectorOpts()
	opts.IgnoreRange = &engine.Range{Min: -10, Max: 10}
	m := engine.NewDetector(db, dialect.Get(dialect.MySQL), opts).CheckOne(context.Background(), orderRef(reference.FixUnknown))
	require.NoError(t, m.Err)
	assert.Equal(t, [][]any{{int64(11)}}, m.Values)
}

func TestCheck_FailureIsCaptured(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	good := orderRef(reference.FixUnknown)
	bad := reference.NewReference(
		reference.NewQuery(numTable("Layout", "plid", "plid", "groupId"), []string{"groupId"}, nil, ""),
		reference.NewQuery(numTable("Group_", "groupId", "groupId"), []string{"groupId"}, nil, ""), false)
	unchecked := reference.NewReference(reference.NewQuery(numTable("Counter", "", "currentId"), []string{"currentId"}, nil, ""), nil, false)

	mock.ExpectQuery(regexp.QuoteMeta("FROM `Order`")).WillReturnRows(sqlmock.NewRows([]string{"customerId"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `Layout`")).WillReturnError(errors.New("lock wait timeout"))

	var progress atomic.Int32
	results := engine.NewDetector(db, dialect.Get(dialect.MySQL), detectorOpts()).
		Check(context.Background(), []*reference.Reference{good, unchecked, bad}, func() { progress.Add(1) })

	require.Len(t, results, 2, "references without destination are not checked")
	assert.Same(t, good, results[0].Reference)
	assert.Same(t, bad, results[1].Reference)
	assert.Equal(t, [][]any{{int64(3)}}, results[0].Values)
	require.Error(t, results[1].Err)
	assert.True(t, errs.IsCheck(results[1].Err))
	assert.Contains(t, results[1].Err.Error(), "lock wait timeout")
	assert.Equal(t, int64(-1), results[1].AffectedRows)
	assert.Equal(t, int32(2), progress.Load())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheck_ManyReferencesKeepOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	dest := numTable("Customer", "id", "id")
	var refs []*reference.Reference
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Child%02d", i)
		refs = append(refs, reference.NewReference(
			reference.NewQuery(numTable(name, "id", "id", "customerId"), []string{"customerId"}, nil, ""),
			reference.NewQuery(dest, []string{"id"}, nil, ""), false))
		mock.ExpectQuery(regexp.QuoteMeta("FROM `"+name+"`")).
			WillReturnRows(sqlmock.NewRows([]string{"customerId"}).AddRow(int64(i + 100)))
	}

	opts := detectorOpts()
	opts.Workers = 4
	results := engine.NewDetector(db, dialect.Get(dialect.MySQL), opts).Check(context.Background(), refs, nil)
	require.Len(t, results, 20)
	for i, m := range results {
		assert.Same(t, refs[i], m.Reference)
		assert.Equal(t, [][]any{{int64(i + 100)}}, m.Values)
	}
}

func TestCountAffectedRows_Batches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := &engine.MissingReferences{Reference: orderRef(reference.FixDelete), AffectedRows: -1}
	for i := 0; i < 2500; i++ {
		m.Values = append(m.Values, []any{int64(i + 1)})
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `Order`")).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(2000)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `Order`")).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(600)))

	det := engine.NewDetector(db, dialect.Get(dialect.MySQL), detectorOpts())
	n, err := det.CountAffectedRows(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(2600), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupStatements(t *testing.T) {
	d := dialect.Get(dialect.MySQL)

	del := &engine.MissingReferences{Reference: orderRef(reference.FixDelete), Values: [][]any{{int64(99)}, {int64(98)}}}
	assert.Equal(t,
		[]string{"DELETE FROM `Order` WHERE `customerId` IN (99, 98)"},
		engine.CleanupStatements(d, del))

	upd := &engine.MissingReferences{Reference: orderRef(reference.FixUpdate), Values: [][]any{{int64(99)}}}
	assert.Equal(t,
		[]string{"UPDATE `Order` SET `customerId` = 0 WHERE `customerId` IN (99)"},
		engine.CleanupStatements(d, upd))

	unknown := &engine.MissingReferences{Reference: orderRef(reference.FixUnknown), Values: [][]any{{int64(99)}}}
	assert.Empty(t, engine.CleanupStatements(d, unknown))

	failed := &engine.MissingReferences{Reference: orderRef(reference.FixDelete), Err: errors.New("x")}
	assert.Empty(t, engine.CleanupStatements(d, failed))
}

func TestCleanupStatements_BatchesAndDialects(t *testing.T) {
	m := &engine.MissingReferences{Reference: orderRef(reference.FixDelete)}
	for i := 0; i < 4500; i++ {
		m.Values = append(m.Values, []any{int64(i + 1)})
	}

	stmts := engine.CleanupStatements(dialect.Get(dialect.SQLServer), m)
	require.Len(t, stmts, 3)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "DELETE FROM [Order] WHERE "), s)
	}
	assert.Equal(t, 2, strings.Count(stmts[0], " IN ("))
	assert.Equal(t, 1, strings.Count(stmts[2], " IN ("))

	sel := engine.SelectStatements(dialect.Get(dialect.PostgreSQL), m)
	require.Len(t, sel, 3)
	alias := m.Reference.Origin.Alias()
	assert.True(t, strings.HasPrefix(sel[0], "SELECT "+alias+`.* FROM "Order" `+alias+" WHERE ("), sel[0])
}

func TestExecuteCleanup_PropagatesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	m := &engine.MissingReferences{Reference: orderRef(reference.FixDelete), Values: [][]any{{int64(99)}}}
	_, err = engine.NewDetector(db, dialect.Get(dialect.MySQL), detectorOpts()).ExecuteCleanup(context.Background(), m)
	require.Error(t, err)
	assert.True(t, errs.IsCleanup(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteCleanup_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `Order`").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	m := &engine.MissingReferences{Reference: orderRef(reference.FixUpdate), Values: [][]any{{int64(99)}}}
	n, err := engine.NewDetector(db, dialect.Get(dialect.MySQL), detectorOpts()).ExecuteCleanup(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

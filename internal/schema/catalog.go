package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"db-refcheck/internal/dialect"
	"db-refcheck/internal/errs"
	"db-refcheck/internal/logger"
)

// Options scope and filter what the Catalog loads.
type Options struct {
	Schema        string
	IgnoreTables  []string
	IgnoreColumns []string
	// ClassNames is the configured table -> entity mapping. A blank value is
	// an explicit "no entity" and is kept as such.
	ClassNames map[string]string
	Resolver   ModelResolver
	Logger     *logger.Logger
}

// Catalog is an in-memory snapshot of the tables in one schema. It is safe
// for concurrent use; the trigger package keeps it current with
// AddTables, RemoveTables and InvalidateEmpty.
type Catalog struct {
	db     *sql.DB
	d      dialect.Dialect
	schema string
	opts   Options
	log    *logger.Logger

	mu     sync.RWMutex
	tables map[string]*Table
	model  *Model

	empty    sync.Map // "lower(table)|condition" -> bool
	patterns *patternCache
}

// New introspects every base table of the schema. Tables whose metadata
// cannot be read are logged and left out.
func New(ctx context.Context, db *sql.DB, d dialect.Dialect, opts Options) (*Catalog, error) {
	c := newCatalog(db, d, opts)

	names, err := c.listTables(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Infof("Introspecting %d tables in schema %q", len(names), c.schema)

	for _, name := range names {
		if c.IgnoreTable(name) {
			continue
		}
		t, err := c.inspectTable(ctx, name)
		if err != nil {
			c.log.WarnErr(err, fmt.Sprintf("dropping table %s", name))
			continue
		}
		if t != nil {
			c.tables[t.Key()] = t
		}
	}

	c.RefreshModel(ctx)
	return c, nil
}

// NewFromTables builds a Catalog over already known tables, without a
// database. Emptiness checks report every table as non-empty.
func NewFromTables(d dialect.Dialect, tables []*Table, opts Options) *Catalog {
	c := newCatalog(nil, d, opts)
	for _, t := range tables {
		if c.IgnoreTable(t.Name) {
			continue
		}
		t = c.filterColumns(t)
		if t != nil {
			c.tables[t.Key()] = t
		}
	}
	c.RefreshModel(context.Background())
	return c
}

func newCatalog(db *sql.DB, d dialect.Dialect, opts Options) *Catalog {
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}
	if opts.Resolver == nil {
		opts.Resolver = &NoHostResolver{}
	}
	return &Catalog{
		db:       db,
		d:        d,
		schema:   d.SchemaName(opts.Schema),
		opts:     opts,
		log:      log,
		tables:   make(map[string]*Table),
		patterns: &patternCache{},
	}
}

func (c *Catalog) Dialect() dialect.Dialect {
	return c.d
}

func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Table looks a table up by name, ignoring case.
func (c *Catalog) Table(name string) *Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[strings.ToLower(strings.TrimSpace(name))]
}

// Tables returns the tables matching filter, sorted by name. A blank filter
// or "*" selects all tables.
func (c *Catalog) Tables(filter string) []*Table {
	f := strings.TrimSpace(filter)
	c.mu.RLock()
	var out []*Table
	if f != "" && f != "*" && !strings.Contains(f, "*") {
		if t, ok := c.tables[strings.ToLower(f)]; ok {
			out = append(out, t)
		}
	} else {
		for _, t := range c.tables {
			if f == "" || Matches(f, t.Name) {
				out = append(out, t)
			}
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// IgnoreTable reports whether name matches a configured ignore-table pattern.
func (c *Catalog) IgnoreTable(name string) bool {
	return MatchesAny(c.opts.IgnoreTables, name)
}

// IgnoreColumn reports whether table.column matches a configured
// ignore-column pattern.
func (c *Catalog) IgnoreColumn(table, column string) bool {
	for _, p := range c.opts.IgnoreColumns {
		if MatchesColumn(p, table, column) {
			return true
		}
	}
	return false
}

// IsTableEmpty reports whether no row of t satisfies condition. Answers are
// cached per (table, condition) until InvalidateEmpty is called for t.
func (c *Catalog) IsTableEmpty(ctx context.Context, t *Table, condition string) (bool, error) {
	key := emptyKey(t.Name, condition)
	if v, ok := c.empty.Load(key); ok {
		return v.(bool), nil
	}
	if c.db == nil || t.Raw {
		return false, nil
	}

	q := c.d.LimitRowQuery(dialect.Select(c.d, false, []string{"1"}, t.Name, "", condition), 1)
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return false, errs.Wrap(errs.ErrKindIntrospection, "emptiness probe on "+t.Name, err)
	}
	defer rows.Close()
	isEmpty := !rows.Next()
	if err := rows.Err(); err != nil {
		return false, errs.Wrap(errs.ErrKindIntrospection, "emptiness probe on "+t.Name, err)
	}

	c.empty.Store(key, isEmpty)
	return isEmpty, nil
}

// InvalidateEmpty drops cached emptiness answers for the named tables.
func (c *Catalog) InvalidateEmpty(names ...string) {
	for _, n := range names {
		prefix := strings.ToLower(n) + "|"
		c.empty.Range(func(k, _ any) bool {
			if strings.HasPrefix(k.(string), prefix) {
				c.empty.Delete(k)
			}
			return true
		})
	}
}

// emptyKey folds the table name only; the condition may hold case-sensitive
// literals and is kept as written.
func emptyKey(table, condition string) string {
	return strings.ToLower(table) + "|" + strings.TrimSpace(condition)
}

// AddTables introspects the named tables and adds or replaces them.
func (c *Catalog) AddTables(ctx context.Context, names ...string) error {
	if c.db == nil {
		return errs.New(errs.ErrKindInvalidInput, "catalog has no connection")
	}
	for _, name := range names {
		if c.IgnoreTable(name) {
			continue
		}
		t, err := c.inspectTable(ctx, name)
		if err != nil {
			c.log.WarnErr(err, fmt.Sprintf("cannot add table %s", name))
			continue
		}
		c.InvalidateEmpty(name)
		if t == nil {
			c.RemoveTables(name)
			continue
		}
		c.applyModel(t, c.currentModel())
		c.mu.Lock()
		c.tables[t.Key()] = t
		c.mu.Unlock()
	}
	return nil
}

// RemoveTables forgets the named tables.
func (c *Catalog) RemoveTables(names ...string) {
	c.mu.Lock()
	for _, n := range names {
		delete(c.tables, strings.ToLower(n))
	}
	c.mu.Unlock()
	c.InvalidateEmpty(names...)
}

// RefreshModel asks the resolver again and rebinds entity names, ids and
// ranks. Tables are replaced, never mutated, so readers holding the old
// *Table see a consistent snapshot.
func (c *Catalog) RefreshModel(ctx context.Context) {
	model, err := c.opts.Resolver.Resolve(ctx, c.knownClasses())
	switch {
	case errs.IsUnavailable(err):
		c.log.Debugf("Model resolver unavailable, using configured mapping only: %v", err)
		model = nil
	case err != nil:
		c.log.WarnErr(err, "model resolver failed, using configured mapping only")
		model = nil
	}

	c.mu.Lock()
	c.model = model
	for k, t := range c.tables {
		nt := t.clone()
		c.applyModel(nt, model)
		c.tables[k] = nt
	}
	c.mu.Unlock()
}

func (c *Catalog) currentModel() *Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

func (c *Catalog) knownClasses() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range c.opts.ClassNames {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) applyModel(t *Table, model *Model) {
	t.ClassName, t.HasClassName, t.ClassNameID, t.Rank = "", false, 0, 0

	for k, v := range c.opts.ClassNames {
		if strings.EqualFold(k, t.Name) {
			t.ClassName, t.HasClassName = v, true
			break
		}
	}
	if model == nil {
		return
	}
	if !t.HasClassName {
		if v, ok := model.ClassNames[t.Key()]; ok {
			t.ClassName, t.HasClassName = v, true
			c.log.Debugf("Table %s resolved to entity %s", t.Name, v)
		}
	}
	if t.ClassName != "" {
		t.ClassNameID = model.ClassNameIDs[t.ClassName]
	}
	t.Rank = model.Ranks[t.Key()]
}

// ---------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------

func (c *Catalog) listTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, c.d.TablesQuery(), c.schema)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to query tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to scan table name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "error iterating tables", err)
	}
	return names, nil
}

// inspectTable reads one table. A nil table with a nil error means every
// column was ignored.
func (c *Catalog) inspectTable(ctx context.Context, name string) (*Table, error) {
	colRows, err := c.db.QueryContext(ctx, c.d.ColumnsQuery(), c.schema, name)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to query columns", err)
	}
	defer colRows.Close()

	var columns []*Column
	for colRows.Next() {
		var cName, dType, cLen, isNull sql.NullString
		if err := colRows.Scan(&cName, &dType, &cLen, &isNull); err != nil {
			return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to scan column", err)
		}
		if !cName.Valid {
			continue
		}
		columns = append(columns, &Column{
			Name:     cName.String,
			TypeName: dType.String,
			Class:    dialect.ClassifyType(dType.String),
			Size:     parseSize(cLen),
			Nullable: dialect.IsNullableFlag(isNull.String),
		})
	}
	if err := colRows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "error iterating columns", err)
	}

	pkRows, err := c.db.QueryContext(ctx, c.d.PrimaryKeysQuery(), c.schema, name)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to query primary key", err)
	}
	defer pkRows.Close()

	var pks []string
	for pkRows.Next() {
		var pk sql.NullString
		if err := pkRows.Scan(&pk); err != nil {
			return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to scan primary key", err)
		}
		if pk.Valid && pk.String != "" {
			pks = append(pks, pk.String)
		}
	}
	if err := pkRows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "error iterating primary key", err)
	}

	return c.filterColumns(NewTable(name, columns, pks)), nil
}

// filterColumns drops ignored columns; a table left without columns is nil.
func (c *Catalog) filterColumns(t *Table) *Table {
	var kept []*Column
	for _, col := range t.Columns {
		if !c.IgnoreColumn(t.Name, col.Name) {
			kept = append(kept, col)
		}
	}
	if len(kept) == 0 {
		c.log.Debugf("Table %s has no columns left after ignore rules", t.Name)
		return nil
	}
	nt := t.clone()
	nt.Columns = kept
	nt.patterns = c.patterns
	return nt
}

// parseSize handles sizes reported as integers or decimals (Oracle NUMBER).
func parseSize(s sql.NullString) int {
	if !s.Valid || s.String == "" {
		return 0
	}
	var length int
	if _, err := fmt.Sscanf(s.String, "%d", &length); err == nil {
		return length
	}
	var fLength float64
	if _, err := fmt.Sscanf(s.String, "%f", &fLength); err == nil {
		return int(fLength)
	}
	return 0
}

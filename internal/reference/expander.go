package reference

import (
	"context"
	"strings"

	"db-refcheck/internal/config"
	"db-refcheck/internal/dialect"
	"db-refcheck/internal/logger"
	"db-refcheck/internal/schema"
)

// Options tune rule expansion.
type Options struct {
	// CheckUndefinedTables keeps tables without an entity mapping.
	CheckUndefinedTables bool
	// SkipEmptyTables drops origin tables with no row matching the origin
	// condition.
	SkipEmptyTables bool
	Logger          *logger.Logger
}

// Expander resolves rule templates against a Catalog.
type Expander struct {
	cat  *schema.Catalog
	opts Options
	log  *logger.Logger
}

func NewExpander(cat *schema.Catalog, opts Options) *Expander {
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}
	return &Expander{cat: cat, opts: opts, log: log}
}

// Expand resolves every template in order into a deduplicated Set.
func (e *Expander) Expand(ctx context.Context, templates []config.ReferenceTemplate) (*Set, error) {
	set := NewSet()
	for _, tpl := range templates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, r := range e.ExpandTemplate(ctx, tpl) {
			set.Add(r)
		}
	}
	e.log.Infof("Expanded %d rules into %d references", len(templates), set.Len())

	if e.log.DebugEnabled() {
		for _, c := range UncheckedColumns(e.cat, set) {
			e.log.Debugf("Key-shaped column not covered by any reference: %s", c)
		}
	}
	return set, nil
}

// candidate is a concrete Reference before disambiguation.
type candidate struct {
	origin *Query
	dest   *Query
}

// ExpandTemplate resolves a single template.
func (e *Expander) ExpandTemplate(ctx context.Context, tpl config.ReferenceTemplate) []*Reference {
	log := e.log.With().Str("rule", tpl.String()).Logger()

	origins := e.cat.Tables(tpl.Origin.Table)
	if len(origins) == 0 {
		log.Warnf("Skipping rule: no table matches origin %q", tpl.Origin.Table)
		return nil
	}

	self := tpl.Dest != nil && strings.EqualFold(strings.TrimSpace(tpl.Dest.Table), config.SelfTable)
	var dests []*schema.Table
	if tpl.Dest != nil && !self {
		dests = e.cat.Tables(tpl.Dest.Table)
		if len(dests) == 0 {
			log.Warnf("Skipping rule: no table matches destination %q", tpl.Dest.Table)
			return nil
		}
	}

	var fix FixAction
	if tpl.FixAction != "" {
		var ok bool
		if fix, ok = ParseFixAction(tpl.FixAction); !ok {
			log.Warnf("Ignoring unknown fixAction %q", tpl.FixAction)
		}
	}

	var out []*Reference
	if tpl.DisplayRaw {
		out = append(out, e.rawReference(tpl, origins, dests, self))
	}

	for _, orig := range origins {
		if !e.acceptOrigin(ctx, log, tpl, orig) {
			continue
		}

		if tpl.Dest == nil {
			for _, oq := range e.queries(&tpl.Origin, orig, orig, nil) {
				out = append(out, NewReference(oq, nil, tpl.Hidden))
			}
			continue
		}

		candidates := dests
		if self {
			candidates = []*schema.Table{orig}
		}

		var groups []string
		grouped := make(map[string][]candidate)
		for _, dt := range candidates {
			if !dt.HasClassName && !e.opts.CheckUndefinedTables {
				continue
			}
			for _, c := range e.pairs(tpl, orig, dt) {
				k := c.origin.Key()
				if _, seen := grouped[k]; !seen {
					groups = append(groups, k)
				}
				grouped[k] = append(grouped[k], c)
			}
		}

		for _, k := range groups {
			for _, c := range disambiguate(orig, grouped[k]) {
				r := NewReference(c.origin, c.dest, tpl.Hidden)
				if fix != "" {
					r.FixAction = fix
				} else {
					r.FixAction = classifyFix(c.origin, c.dest)
				}
				out = append(out, r)
			}
		}
	}
	return out
}

func (e *Expander) acceptOrigin(ctx context.Context, log *logger.Logger, tpl config.ReferenceTemplate, orig *schema.Table) bool {
	if !orig.HasClassName && !e.opts.CheckUndefinedTables {
		log.Debugf("Skipping undefined origin table %s", orig.Name)
		return false
	}
	if len(tpl.Origin.ConditionColumns) > 0 && !orig.HasColumns(tpl.Origin.ConditionColumns) {
		return false
	}
	if !e.opts.SkipEmptyTables {
		return true
	}
	cond, ok := substitute(tpl.Origin.Condition, orig, nil)
	if !ok {
		// the condition depends on the destination; probe the whole table
		cond = ""
	}
	empty, err := e.cat.IsTableEmpty(ctx, orig, cond)
	if err != nil {
		log.WarnErr(err, "emptiness probe failed, keeping table "+orig.Name)
		return true
	}
	if empty {
		log.Debugf("Skipping empty origin table %s", orig.Name)
	}
	return !empty
}

// pairs builds the candidate (origin, destination) queries for one table pair.
func (e *Expander) pairs(tpl config.ReferenceTemplate, orig, dt *schema.Table) []candidate {
	if len(tpl.Dest.ConditionColumns) > 0 && !dt.HasColumns(tpl.Dest.ConditionColumns) {
		return nil
	}
	var placeholderDest *schema.Table
	if mentionsDest(tpl.Origin.Columns, tpl.Origin.Castings, []string{tpl.Origin.Condition},
		tpl.Dest.Columns, tpl.Dest.Castings, []string{tpl.Dest.Condition}) {
		placeholderDest = dt
	}

	origQueries := e.queries(&tpl.Origin, orig, orig, placeholderDest)
	destQueries := e.queries(tpl.Dest, dt, orig, dt)

	var out []candidate
	for _, oq := range origQueries {
		for _, dq := range destQueries {
			if len(oq.Columns) != len(dq.Columns) {
				e.log.Warnf("Column count mismatch between %s and %s", oq, dq)
				continue
			}
			if oq.sameTarget(dq) {
				continue
			}
			out = append(out, candidate{origin: restrictToConstants(oq, dq), dest: dq})
		}
	}
	return out
}

// restrictToConstants narrows the origin to the rows a destination literal
// can match: an origin column paired with a constant such as a substituted
// classNameId only holds references to that destination when it equals it.
func restrictToConstants(oq, dq *Query) *Query {
	preds := []string{oq.Condition}
	for i, c := range dq.Columns {
		if !schema.IsConstant(c) || schema.IsConstant(oq.Columns[i]) {
			continue
		}
		p := oq.Columns[i] + " = " + c
		if !strings.Contains(oq.Condition, p) {
			preds = append(preds, p)
		}
	}
	if len(preds) == 1 {
		return oq
	}
	return NewQuery(oq.Table, oq.Columns, oq.Casts, dialect.Where(preds...))
}

// queries expands one side of a template on table t into concrete Queries,
// one per element of the cartesian product of its column patterns.
func (e *Expander) queries(tpl *config.QueryTemplate, t, orig, dest *schema.Table) []*Query {
	cols, ok := substituteAll(tpl.Columns, orig, dest)
	if !ok {
		e.log.Debugf("Placeholders in %v cannot be resolved for %s", tpl.Columns, t.Name)
		return nil
	}
	casts, ok := substituteAll(tpl.Castings, orig, dest)
	if !ok {
		return nil
	}
	cond, ok := substitute(tpl.Condition, orig, dest)
	if !ok {
		e.log.Debugf("Placeholders in condition %q cannot be resolved for %s", tpl.Condition, t.Name)
		return nil
	}

	var out []*Query
	for _, tuple := range cartesian(t, cols) {
		if !t.HasColumns(tuple) {
			continue
		}
		out = append(out, NewQuery(t, tuple, casts, cond))
	}
	if len(out) == 0 {
		e.log.Debugf("No column of %s matches %v", t.Name, cols)
	}
	return out
}

// cartesian returns every combination of column matches, one slot per pattern.
func cartesian(t *schema.Table, patterns []string) [][]string {
	if len(patterns) == 0 {
		return nil
	}
	result := [][]string{{}}
	for _, p := range patterns {
		var matches []string
		if c := normalizeConstant(p); schema.IsConstant(c) {
			matches = []string{c}
		} else {
			matches = t.ColumnNames(p)
		}
		if len(matches) == 0 {
			return nil
		}
		next := make([][]string, 0, len(result)*len(matches))
		for _, prefix := range result {
			for _, m := range matches {
				tuple := append(append(make([]string, 0, len(prefix)+1), prefix...), m)
				next = append(next, tuple)
			}
		}
		result = next
	}
	return result
}

// rawReference renders the template itself for display. Tables resolve to
// the real table only when the pattern matched exactly one.
func (e *Expander) rawReference(tpl config.ReferenceTemplate, origins, dests []*schema.Table, self bool) *Reference {
	ot := schema.NewRawTable(tpl.Origin.Table)
	if len(origins) == 1 {
		ot = origins[0]
	}
	r := &Reference{
		Origin:    NewQuery(ot, tpl.Origin.Columns, tpl.Origin.Castings, tpl.Origin.Condition),
		Hidden:    tpl.Hidden,
		Raw:       true,
		FixAction: FixUnknown,
	}
	if tpl.Dest != nil {
		dt := schema.NewRawTable(tpl.Dest.Table)
		switch {
		case self:
			dt = ot
		case len(dests) == 1:
			dt = dests[0]
		}
		r.Dest = NewQuery(dt, tpl.Dest.Columns, tpl.Dest.Castings, tpl.Dest.Condition)
	} else {
		r.Hidden = true
	}
	if fix, ok := ParseFixAction(tpl.FixAction); ok {
		r.FixAction = fix
	}
	return r
}

package reference

import (
	"strings"

	"db-refcheck/internal/dialect"
	"db-refcheck/internal/schema"
)

// FixAction is the recommended remediation for a missing reference.
type FixAction string

const (
	FixDelete  FixAction = "delete"
	FixUpdate  FixAction = "update"
	FixUnknown FixAction = "unknown"
)

// ParseFixAction accepts delete, update and unknown, ignoring case.
func ParseFixAction(s string) (FixAction, bool) {
	switch FixAction(strings.ToLower(strings.TrimSpace(s))) {
	case FixDelete:
		return FixDelete, true
	case FixUpdate:
		return FixUpdate, true
	case FixUnknown:
		return FixUnknown, true
	}
	return "", false
}

// Reference links origin values to the destination rows they should
// identify. A nil Dest marks the origin as intentionally unchecked.
type Reference struct {
	Origin    *Query
	Dest      *Query
	Hidden    bool
	Raw       bool
	FixAction FixAction
}

// NewReference builds a Reference; one without destination is always hidden.
func NewReference(origin, dest *Query, hidden bool) *Reference {
	return &Reference{
		Origin:    origin,
		Dest:      dest,
		Hidden:    hidden || dest == nil,
		FixAction: FixUnknown,
	}
}

// Key identifies the Reference in a Set: the origin query, plus the
// destination for raw references.
func (r *Reference) Key() string {
	if !r.Raw {
		return r.Origin.Key()
	}
	k := "raw:" + r.Origin.Key() + "=>"
	if r.Dest != nil {
		k += r.Dest.Key()
	}
	return k
}

// Checkable reports whether the detector should run this Reference.
func (r *Reference) Checkable() bool {
	return r.Dest != nil && !r.Raw
}

// String renders "origin => destination".
func (r *Reference) String() string {
	if r.Dest == nil {
		return r.Origin.String() + " => -"
	}
	return r.Origin.String() + " => " + r.Dest.String()
}

// Comparison returns the origin and destination expressions to compare,
// with cast overrides applied or the automatic cast rule otherwise.
func (r *Reference) Comparison(d dialect.Dialect) (origin, dest []string) {
	for i := range r.Origin.Columns {
		o, de := r.Origin.Operand(d, i), r.Dest.Operand(d, i)
		oe, oOver := dialect.ApplyCast(d, o.Expr, r.Origin.Cast(i))
		dee, dOver := dialect.ApplyCast(d, de.Expr, r.Dest.Cast(i))
		if !oOver && !dOver {
			oe, dee = dialect.CastOperands(d, o, de)
		}
		origin = append(origin, oe)
		dest = append(dest, dee)
	}
	return origin, dest
}

// CheckSQL renders the statement returning the distinct origin value tuples
// that have no match in the destination.
func (r *Reference) CheckSQL(d dialect.Dialect) string {
	oExprs, dExprs := r.Comparison(d)
	var cols []string
	for i, c := range r.Origin.Columns {
		if !schema.IsConstant(c) {
			cols = append(cols, r.Origin.Operand(d, i).Expr)
		}
	}
	missing := dialect.MissingPredicate(d, oExprs, dExprs, r.Dest.Table.Name, r.Dest.Alias(), r.Dest.Condition)
	return dialect.Select(d, true, cols, r.Origin.Table.Name, r.Origin.Alias(), dialect.Where(r.Origin.Condition, missing))
}

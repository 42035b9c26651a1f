package trigger

import (
	"strings"

	"db-refcheck/internal/schema"
)

// Delta is what one committed transaction did to the schema and data.
type Delta struct {
	Created  []string
	Altered  []string
	Dropped  []string
	Modified []string
	// RegistryChanged is set when the entity registry table was written.
	RegistryChanged bool
}

func (d Delta) Empty() bool {
	return len(d.Created) == 0 && len(d.Altered) == 0 && len(d.Dropped) == 0 &&
		len(d.Modified) == 0 && !d.RegistryChanged
}

// tableSet is an insertion-ordered set of table names, keyed case-insensitively.
type tableSet struct {
	names   map[string]string
	ordered map[string]bool
	order   []string
}

func newTableSet() *tableSet {
	return &tableSet{names: make(map[string]string), ordered: make(map[string]bool)}
}

func (s *tableSet) add(name string) {
	k := strings.ToLower(name)
	if _, ok := s.names[k]; ok {
		return
	}
	s.names[k] = name
	if !s.ordered[k] {
		s.ordered[k] = true
		s.order = append(s.order, k)
	}
}

func (s *tableSet) remove(name string) {
	delete(s.names, strings.ToLower(name))
}

func (s *tableSet) has(name string) bool {
	_, ok := s.names[strings.ToLower(name)]
	return ok
}

func (s *tableSet) list() []string {
	var out []string
	for _, k := range s.order {
		if n, ok := s.names[k]; ok {
			out = append(out, n)
		}
	}
	return out
}

// TxAccumulator collects the statements of one transaction on one
// connection. The caller owns it; it is not safe for concurrent use.
type TxAccumulator struct {
	created, altered, dropped, modified *tableSet
	registry                            bool
}

func NewTxAccumulator() *TxAccumulator {
	a := &TxAccumulator{}
	a.reset()
	return a
}

func (a *TxAccumulator) reset() {
	a.created, a.altered, a.dropped, a.modified = newTableSet(), newTableSet(), newTableSet(), newTableSet()
	a.registry = false
}

// Record classifies sql and accumulates its effect.
func (a *TxAccumulator) Record(sql string) Statement {
	st := Classify(sql)
	a.RecordStatement(st)
	return st
}

// RecordStatement accumulates an already classified statement.
func (a *TxAccumulator) RecordStatement(st Statement) {
	switch st.Kind {
	case KindInsert, KindUpdate, KindDelete:
		for _, t := range st.Tables {
			a.modified.add(t)
			if strings.EqualFold(t, schema.RegistryTable) {
				a.registry = true
			}
		}
	case KindDDL:
		a.recordDDL(st)
	case KindSelect, KindOther:
	}
}

func (a *TxAccumulator) recordDDL(st Statement) {
	switch st.Action {
	case DDLCreate:
		for _, t := range st.Tables {
			a.dropped.remove(t)
			a.created.add(t)
		}
	case DDLAlter:
		for _, t := range st.Tables {
			if !a.created.has(t) {
				a.altered.add(t)
			}
		}
	case DDLDrop:
		for _, t := range st.Tables {
			a.drop(t)
		}
	case DDLTruncate:
		for _, t := range st.Tables {
			a.modified.add(t)
		}
	case DDLRename:
		if len(st.Tables) == 2 {
			a.drop(st.Tables[0])
			a.dropped.remove(st.Tables[1])
			a.created.add(st.Tables[1])
		}
	case DDLNone:
	}
	for _, t := range st.Tables {
		if strings.EqualFold(t, schema.RegistryTable) {
			a.registry = true
		}
	}
}

func (a *TxAccumulator) drop(t string) {
	a.created.remove(t)
	a.altered.remove(t)
	a.modified.remove(t)
	a.dropped.add(t)
}

// Commit returns the accumulated Delta and starts over.
func (a *TxAccumulator) Commit() Delta {
	d := Delta{
		Created:         a.created.list(),
		Altered:         a.altered.list(),
		Dropped:         a.dropped.list(),
		Modified:        a.modified.list(),
		RegistryChanged: a.registry,
	}
	a.reset()
	return d
}

// Rollback discards data changes. Schema changes are kept: most engines
// commit DDL implicitly, and refreshing a table that did not change is
// harmless.
func (a *TxAccumulator) Rollback() Delta {
	d := Delta{
		Created: a.created.list(),
		Altered: a.altered.list(),
		Dropped: a.dropped.list(),
	}
	a.reset()
	return d
}

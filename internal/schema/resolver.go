package schema

import (
	"context"
	"database/sql"
	"strings"

	"db-refcheck/internal/errs"
)

// RegistryTable is the host platform table that registers domain entities.
// Writes to it make the current model mapping stale.
const RegistryTable = "ClassName_"

// Model is what a ModelResolver knows about the host platform's entities.
// Table keys are lower-case.
type Model struct {
	ClassNames   map[string]string // table -> entity name
	ClassNameIDs map[string]int64  // entity name -> registry id
	Ranks        map[string]int    // table -> rank, 0 when unranked
}

// ModelResolver maps tables to domain entities and ranks them. knownClasses
// are the entity names already named in the rules document.
type ModelResolver interface {
	Resolve(ctx context.Context, knownClasses []string) (*Model, error)
}

// NoHostResolver is used when no host platform is reachable. It contributes
// ranks when some were configured and is otherwise unavailable.
type NoHostResolver struct {
	Ranks map[string]int
}

func (r *NoHostResolver) Resolve(ctx context.Context, knownClasses []string) (*Model, error) {
	if len(r.Ranks) == 0 {
		return nil, errs.New(errs.ErrKindUnavailable, "no host platform model available")
	}
	return &Model{Ranks: lowerKeys(r.Ranks)}, nil
}

// RegistryResolver reads the host platform's entity registry table and binds
// each entity to the table named after its simple class name, with or
// without the trailing underscore used for reserved words.
type RegistryResolver struct {
	DB    *sql.DB
	Ranks map[string]int
}

func (r *RegistryResolver) Resolve(ctx context.Context, knownClasses []string) (*Model, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT classNameId, value FROM "+RegistryTable)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnavailable, "cannot read entity registry", err)
	}
	defer rows.Close()

	m := &Model{
		ClassNames:   make(map[string]string),
		ClassNameIDs: make(map[string]int64),
		Ranks:        lowerKeys(r.Ranks),
	}
	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, errs.Wrap(errs.ErrKindIntrospection, "scan entity registry", err)
		}
		m.ClassNameIDs[value] = id
		simple := strings.ToLower(value[strings.LastIndexByte(value, '.')+1:])
		for _, table := range []string{simple, simple + "_"} {
			if _, taken := m.ClassNames[table]; !taken {
				m.ClassNames[table] = value
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "iterate entity registry", err)
	}
	return m, nil
}

func lowerKeys(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

package cmd

import (
	"context"

	"db-refcheck/internal/config"
	"db-refcheck/internal/engine"
	"db-refcheck/internal/reference"
	"db-refcheck/internal/schema"
)

// audit is everything a command needs after the rules have been expanded.
type audit struct {
	settings *Settings
	rules    *config.Configuration
	catalog  *schema.Catalog
	refs     *reference.Set
}

// prepare loads the rules, introspects the schema and expands the rules.
func prepare(ctx context.Context) (*audit, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	rules, err := loadRules(s)
	if err != nil {
		return nil, err
	}

	ranks := rules.TableRanks
	if len(ranks) == 0 {
		ranks = schema.RankTables(rules.LiteralDependencies())
	}

	var resolver schema.ModelResolver = &schema.NoHostResolver{Ranks: ranks}
	if s.HostModel {
		resolver = &hostResolver{
			registry: &schema.RegistryResolver{DB: DB, Ranks: ranks},
			fallback: resolver,
		}
	}

	log.Infof("Reading schema %q...", SchemaName)
	cat, err := schema.New(ctx, DB, Dialect, schema.Options{
		Schema:        SchemaName,
		IgnoreTables:  rules.IgnoreTables,
		IgnoreColumns: rules.IgnoreColumns,
		ClassNames:    rules.TableToClassNameMapping,
		Resolver:      resolver,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	exp := reference.NewExpander(cat, reference.Options{
		CheckUndefinedTables: s.CheckUndefinedTables,
		SkipEmptyTables:      s.SkipEmptyTables,
		Logger:               log,
	})
	refs, err := exp.Expand(ctx, rules.References)
	if err != nil {
		return nil, err
	}
	return &audit{settings: s, rules: rules, catalog: cat, refs: refs}, nil
}

func (a *audit) detector() *engine.Detector {
	opts := engine.DefaultOptions()
	opts.NullTolerant = a.settings.NullTolerant
	opts.IgnoreRange = a.settings.IgnoreRange
	opts.QueryTimeout = a.settings.QueryTimeout
	if a.settings.Workers > 0 {
		opts.Workers = a.settings.Workers
	}
	opts.Logger = log
	return engine.NewDetector(DB, Dialect, opts)
}

// hostResolver reads the entity registry when the schema has one and falls
// back to the static ranks otherwise.
type hostResolver struct {
	registry schema.ModelResolver
	fallback schema.ModelResolver
}

func (h *hostResolver) Resolve(ctx context.Context, knownClasses []string) (*schema.Model, error) {
	m, err := h.registry.Resolve(ctx, knownClasses)
	if err == nil {
		return m, nil
	}
	log.Debugf("Entity registry not readable, running standalone: %v", err)
	return h.fallback.Resolve(ctx, knownClasses)
}

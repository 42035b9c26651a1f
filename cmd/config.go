package cmd

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"db-refcheck/internal/config"
	"db-refcheck/internal/engine"
	"db-refcheck/internal/errs"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
	Active bool   `mapstructure:"active"`
}

// Settings are the audit options under the settings key.
type Settings struct {
	Rules                string        `mapstructure:"rules"`
	Version              string        `mapstructure:"version"`
	CheckUndefinedTables bool          `mapstructure:"checkUndefinedTables"`
	SkipEmptyTables      bool          `mapstructure:"skipEmptyTables"`
	NullTolerant         bool          `mapstructure:"nullTolerant"`
	IgnoreRange          *engine.Range `mapstructure:"ignoreRange"`
	Workers              int           `mapstructure:"workers"`
	QueryTimeout         time.Duration `mapstructure:"queryTimeout"`
	HostModel            bool          `mapstructure:"hostModel"`
}

func setDefaults() {
	viper.SetDefault("settings.rules", ".")
	viper.SetDefault("settings.checkUndefinedTables", true)
	viper.SetDefault("settings.skipEmptyTables", true)
	viper.SetDefault("settings.nullTolerant", true)
	viper.SetDefault("settings.workers", 0)
	viper.SetDefault("settings.queryTimeout", "0s")
	viper.SetDefault("settings.hostModel", true)
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "failed to parse databases config", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, errs.New(errs.ErrKindConfig, "no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, errs.New(errs.ErrKindConfig, "multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// resolveDBConfig prefers --dsn/--driver and falls back to the active entry.
func resolveDBConfig() (*DBConfig, error) {
	if d := viper.GetString("database.dsn"); d != "" {
		driver := viper.GetString("database.driver")
		if driver == "" {
			return nil, errs.New(errs.ErrKindConfig, "--driver is required with --dsn")
		}
		return &DBConfig{Name: "command line", Driver: driver, DSN: d, Active: true}, nil
	}
	return GetActiveDBConfig()
}

// loadSettings decodes the settings key. The whole tree is decoded so
// that defaults of keys missing from a partial settings map survive.
func loadSettings() (*Settings, error) {
	var all struct {
		Settings Settings `mapstructure:"settings"`
	}
	if err := viper.Unmarshal(&all); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "failed to parse settings", err)
	}
	return &all.Settings, nil
}

// loadRules reads the rules document. A directory is searched for the
// file matching settings.version.
func loadRules(s *Settings) (*config.Configuration, error) {
	path := s.Rules
	st, err := os.Stat(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "rules not found", err)
	}
	if st.IsDir() {
		if path, err = config.Locate(path, s.Version); err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"db-refcheck/internal/dialect"
	"db-refcheck/internal/errs"
	"db-refcheck/internal/logger"
)

var (
	cfgFile     string
	dsn         string
	driverFlag  string
	dialectFlag string
	schemaFlag  string

	DB         *sql.DB
	DriverName string
	SchemaName string
	Dialect    dialect.Dialect
	log        *logger.Logger
)

var RootCmd = &cobra.Command{
	Use:   "db-refcheck",
	Short: "Find orphaned references in databases without foreign keys",
	Long: `
  ____  ____    ____  _____ _____ ____ _   _ _____ ____ _  __
 |  _ \| __ )  |  _ \| ____|  ___/ ___| | | | ____/ ___| |/ /
 | | | |  _ \  | |_) |  _| | |_ | |   | |_| |  _|| |   | ' /
 | |_| | |_) | |  _ <| |___|  _|| |___|  _  | |__| |___| . \
 |____/|____/  |_| \_\_____|_|   \____|_| |_|_____\____|_|\_\

DB REFCHECK - expands reference rules against a live schema and reports
values that point at rows which no longer exist.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logger.New(&logger.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			Output: os.Stderr,
		})
		logger.SetGlobal(log)
		return connect(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			DB.Close()
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-refcheck.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN), bypasses the databases list")
	RootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "database/sql driver for --dsn (mysql, postgres, pgx, sqlserver, oracle, sqlite)")
	RootCmd.PersistentFlags().StringVar(&dialectFlag, "dialect", "", "force the SQL dialect instead of detecting it")
	RootCmd.PersistentFlags().StringVar(&schemaFlag, "schema", "", "schema to audit (default depends on the engine)")
	RootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db-refcheck")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("REFCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// connect opens the database named by --dsn or by the active entry of the
// databases list, and resolves its dialect and schema.
func connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveDBConfig()
	if err != nil {
		return err
	}
	DriverName = cfg.Driver

	DB, err = sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return errs.Wrap(errs.ErrKindConfig, "failed to open db", err)
	}
	if err := DB.PingContext(ctx); err != nil {
		return errs.Wrap(errs.ErrKindUnavailable, "failed to connect to db", err)
	}

	name := dialect.Parse(dialectFlag)
	if dialectFlag == "" {
		name = detectDialect(ctx, DB, cfg.Driver)
	}
	Dialect = dialect.Get(name)

	SchemaName = cfg.Schema
	if schemaFlag != "" {
		SchemaName = schemaFlag
	}
	if SchemaName == "" && (name == dialect.MySQL || name == dialect.MariaDB) {
		if err := DB.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&SchemaName); err != nil {
			return errs.Wrap(errs.ErrKindIntrospection, "failed to get database name", err)
		}
		if SchemaName == "" {
			return errs.New(errs.ErrKindConfig, "no database selected in DSN")
		}
	}
	SchemaName = Dialect.SchemaName(SchemaName)

	log.Infof("Connected to %s via %s (dialect %s, schema %q)", cfg.Name, cfg.Driver, Dialect.Name(), SchemaName)
	return nil
}

// productQueries ask the server to describe itself, one query per engine family.
var productQueries = []string{
	"SELECT VERSION()",
	"SELECT @@VERSION",
	"SELECT banner FROM v$version WHERE ROWNUM = 1",
	"SELECT 'sqlite ' || sqlite_version()",
	"SELECT service_level FROM TABLE (sysproc.env_get_inst_info()) AS t",
	"SELECT 'hsql ' || DATABASE_VERSION() FROM INFORMATION_SCHEMA.SYSTEM_USERS",
}

// detectDialect prefers what the server reports about itself and falls back
// to the driver name. MariaDB is only told apart from MySQL this way.
func detectDialect(ctx context.Context, db *sql.DB, driver string) dialect.Name {
	for _, q := range productQueries {
		var product string
		if err := db.QueryRowContext(ctx, q).Scan(&product); err != nil {
			continue
		}
		if name := dialect.FromProductName(product); name != dialect.Unknown {
			log.Debugf("Server reports %q", product)
			return name
		}
	}
	return dialect.FromDriver(driver)
}

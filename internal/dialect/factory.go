package dialect

import "strings"

// Get returns the Dialect for a resolved engine identifier. Unrecognised
// names fall back to the ANSI renderer.
func Get(name Name) Dialect {
	switch name {
	case DB2:
		return &DB2Dialect{}
	case Hypersonic:
		return &HypersonicDialect{}
	case MariaDB:
		return &MariadbDialect{}
	case MySQL:
		return &MysqlDialect{}
	case Oracle:
		return &OracleDialect{}
	case PostgreSQL:
		return &PostgresDialect{}
	case SQLServer:
		return &MSSQLDialect{}
	case Sybase:
		return &SybaseDialect{}
	case SQLite:
		return &SqliteDialect{}
	default:
		return &AnsiDialect{}
	}
}

// Names lists every supported engine identifier.
func Names() []Name {
	return []Name{DB2, Hypersonic, MariaDB, MySQL, Oracle, PostgreSQL, SQLServer, Sybase, SQLite, Unknown}
}

// Parse maps a user supplied identifier (case-insensitive, common aliases
// accepted) to a Name.
func Parse(s string) Name {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "db2":
		return DB2
	case "hypersonic", "hsql", "hsqldb":
		return Hypersonic
	case "mariadb":
		return MariaDB
	case "mysql":
		return MySQL
	case "oracle":
		return Oracle
	case "postgresql", "postgres", "pgx":
		return PostgreSQL
	case "sqlserver", "mssql":
		return SQLServer
	case "sybase", "ase":
		return Sybase
	case "sqlite", "sqlite3":
		return SQLite
	default:
		return Unknown
	}
}

// FromDriver resolves the dialect from a database/sql driver name.
func FromDriver(driver string) Name {
	return Parse(driver)
}

// FromProductName resolves the dialect from the product string a server
// reports about itself (version() / @@version / v$version banners).
func FromProductName(product string) Name {
	p := strings.ToLower(product)
	switch {
	case strings.Contains(p, "mariadb"):
		return MariaDB
	case strings.Contains(p, "mysql"):
		return MySQL
	case strings.Contains(p, "postgres"):
		return PostgreSQL
	case strings.Contains(p, "microsoft sql server"):
		return SQLServer
	case strings.Contains(p, "adaptive server"), strings.Contains(p, "sybase"):
		return Sybase
	case strings.Contains(p, "oracle"):
		return Oracle
	case strings.Contains(p, "db2"):
		return DB2
	case strings.Contains(p, "hsql"):
		return Hypersonic
	case strings.Contains(p, "sqlite"):
		return SQLite
	default:
		return Unknown
	}
}

// Ensure interface implementation
var _ Dialect = (*AnsiDialect)(nil)
var _ Dialect = (*DB2Dialect)(nil)
var _ Dialect = (*HypersonicDialect)(nil)
var _ Dialect = (*MariadbDialect)(nil)
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*SybaseDialect)(nil)
var _ Dialect = (*SqliteDialect)(nil)

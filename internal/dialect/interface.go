package dialect

// Name identifies a database engine.
type Name string

const (
	DB2        Name = "db2"
	Hypersonic Name = "hypersonic"
	MariaDB    Name = "mariadb"
	MySQL      Name = "mysql"
	Oracle     Name = "oracle"
	PostgreSQL Name = "postgresql"
	SQLServer  Name = "sqlserver"
	Sybase     Name = "sybase"
	SQLite     Name = "sqlite"
	Unknown    Name = "unknown"
)

// Dialect abstracts the engine-specific parts of introspection and SQL rendering.
type Dialect interface {
	Name() Name

	// Metadata Queries (Schema Introspection). Every query takes the schema
	// as its first bind argument; column and key queries take the table second.
	TablesQuery() string
	ColumnsQuery() string // rows: name, type name, size, nullable
	PrimaryKeysQuery() string
	Placeholder(index int) string // Returns ?, $1, @p1, :1
	SchemaName(input string) string
	LimitRowQuery(query string, limit int) string

	// Rendering
	Quote(ident string) string
	CastText(expr string) string
	TimestampLiteral(ts string) string
	// PrefersNotExists is true for engines whose planners handle correlated
	// NOT EXISTS far better than NOT IN.
	PrefersNotExists() bool
	// SupportsRowValues reports whether (a, b) IN ((1, 2)) is valid.
	SupportsRowValues() bool
	// AliasInDML reports whether DELETE FROM t alias / UPDATE t alias is valid.
	AliasInDML() bool
	// MultiColumnCountDistinct reports whether COUNT(DISTINCT a, b) is valid.
	MultiColumnCountDistinct() bool
}

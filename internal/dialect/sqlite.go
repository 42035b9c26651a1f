package dialect

import (
	"fmt"
)

// SqliteDialect reads metadata from sqlite_master and pragma_table_info.
// SQLite has a single schema per connection, so the schema argument is only
// bound to keep the argument list uniform.
type SqliteDialect struct {
	AnsiDialect
}

func (d *SqliteDialect) Name() Name {
	return SQLite
}

func (d *SqliteDialect) TablesQuery() string {
	return bindMetadata(d, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND {schema} IS NOT NULL ORDER BY name`)
}

func (d *SqliteDialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT name, type, 0, CASE WHEN "notnull" = 0 AND pk = 0 THEN 'YES' ELSE 'NO' END FROM pragma_table_info({table}) WHERE {schema} IS NOT NULL ORDER BY cid`)
}

func (d *SqliteDialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `SELECT name FROM pragma_table_info({table}) WHERE pk > 0 AND {schema} IS NOT NULL ORDER BY pk`)
}

// Placeholder numbers the arguments so a query may use them in any order.
func (d *SqliteDialect) Placeholder(index int) string {
	return fmt.Sprintf("?%d", index+1)
}

func (d *SqliteDialect) SchemaName(input string) string {
	if input == "" {
		return "main"
	}
	return input
}

func (d *SqliteDialect) LimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (d *SqliteDialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS TEXT)", expr)
}

// AliasInDML is false: SQLite only accepts "AS alias" in DELETE and UPDATE
// since 3.24 and never in the short form.
func (d *SqliteDialect) AliasInDML() bool {
	return false
}

package dialect

import (
	"fmt"
)

type PostgresDialect struct {
	AnsiDialect
}

func (d *PostgresDialect) Name() Name {
	return PostgreSQL
}

func (d *PostgresDialect) TablesQuery() string {
	return bindMetadata(d, `SELECT table_name FROM information_schema.tables WHERE table_schema = {schema} AND table_type = 'BASE TABLE' ORDER BY table_name`)
}

func (d *PostgresDialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT column_name, udt_name, COALESCE(character_maximum_length, numeric_precision, 0), is_nullable FROM information_schema.columns WHERE table_schema = {schema} AND table_name = {table} ORDER BY ordinal_position`)
}

func (d *PostgresDialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `SELECT kcu.column_name FROM information_schema.table_constraints tc JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema AND tc.table_name = kcu.table_name WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = {schema} AND tc.table_name = {table} ORDER BY kcu.ordinal_position`)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) SchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}

func (d *PostgresDialect) LimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (d *PostgresDialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS TEXT)", expr)
}

func (d *PostgresDialect) TimestampLiteral(ts string) string {
	return "TIMESTAMP '" + ts + "'"
}

func (d *PostgresDialect) PrefersNotExists() bool {
	return true
}

package dialect

import (
	"fmt"
	"strings"
)

// AnsiDialect renders plain SQL-92 and reads INFORMATION_SCHEMA. It backs the
// "unknown" dialect and is embedded by engines that only differ in details.
type AnsiDialect struct{}

func (d *AnsiDialect) Name() Name {
	return Unknown
}

func (d *AnsiDialect) TablesQuery() string {
	return bindMetadata(d, `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = {schema} AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`)
}

func (d *AnsiDialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT COLUMN_NAME, DATA_TYPE, COALESCE(CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, 0), IS_NULLABLE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = {schema} AND TABLE_NAME = {table} ORDER BY ORDINAL_POSITION`)
}

func (d *AnsiDialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `SELECT KCU.COLUMN_NAME FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS TC JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU ON TC.CONSTRAINT_NAME = KCU.CONSTRAINT_NAME AND TC.TABLE_SCHEMA = KCU.TABLE_SCHEMA AND TC.TABLE_NAME = KCU.TABLE_NAME WHERE TC.CONSTRAINT_TYPE = 'PRIMARY KEY' AND TC.TABLE_SCHEMA = {schema} AND TC.TABLE_NAME = {table} ORDER BY KCU.ORDINAL_POSITION`)
}

func (d *AnsiDialect) Placeholder(index int) string {
	return "?"
}

func (d *AnsiDialect) SchemaName(input string) string {
	return input
}

func (d *AnsiDialect) LimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s FETCH FIRST %d ROWS ONLY", query, limit)
}

func (d *AnsiDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d *AnsiDialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS VARCHAR(255))", expr)
}

func (d *AnsiDialect) TimestampLiteral(ts string) string {
	return "'" + ts + "'"
}

func (d *AnsiDialect) PrefersNotExists() bool {
	return false
}

func (d *AnsiDialect) SupportsRowValues() bool {
	return true
}

func (d *AnsiDialect) AliasInDML() bool {
	return true
}

func (d *AnsiDialect) MultiColumnCountDistinct() bool {
	return false
}

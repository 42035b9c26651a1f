package dialect

import (
	"fmt"
	"strings"
)

type MSSQLDialect struct {
	AnsiDialect
}

func (d *MSSQLDialect) Name() Name {
	return SQLServer
}

func (d *MSSQLDialect) TablesQuery() string {
	return bindMetadata(d, `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = {schema} AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`)
}

func (d *MSSQLDialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT COLUMN_NAME, DATA_TYPE, COALESCE(CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, 0), IS_NULLABLE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = {schema} AND TABLE_NAME = {table} ORDER BY ORDINAL_POSITION`)
}

func (d *MSSQLDialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `SELECT KCU.COLUMN_NAME FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS TC JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU ON TC.CONSTRAINT_NAME = KCU.CONSTRAINT_NAME AND TC.TABLE_SCHEMA = KCU.TABLE_SCHEMA WHERE TC.CONSTRAINT_TYPE = 'PRIMARY KEY' AND TC.TABLE_SCHEMA = {schema} AND TC.TABLE_NAME = {table} ORDER BY KCU.ORDINAL_POSITION`)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) SchemaName(input string) string {
	if input == "" {
		return "dbo"
	}
	return input
}

// LimitRowQuery injects TOP after the leading SELECT.
func (d *MSSQLDialect) LimitRowQuery(query string, limit int) string {
	return injectTop(query, limit)
}

func (d *MSSQLDialect) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

func (d *MSSQLDialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS NVARCHAR(MAX))", expr)
}

func (d *MSSQLDialect) PrefersNotExists() bool {
	return true
}

func (d *MSSQLDialect) SupportsRowValues() bool {
	return false
}

func (d *MSSQLDialect) AliasInDML() bool {
	return false
}

func injectTop(query string, limit int) string {
	trimmed := strings.TrimSpace(query)
	if strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Sprintf("SELECT TOP %d%s", limit, trimmed[len("SELECT"):])
	}
	return query
}

package dialect

import (
	"fmt"
	"strings"
)

type MysqlDialect struct {
	AnsiDialect
}

func (d *MysqlDialect) Name() Name {
	return MySQL
}

func (d *MysqlDialect) TablesQuery() string {
	return bindMetadata(d, `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = {schema} AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`)
}

func (d *MysqlDialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT COLUMN_NAME, DATA_TYPE, COALESCE(CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, 0), IS_NULLABLE FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = {schema} AND TABLE_NAME = {table} ORDER BY ORDINAL_POSITION`)
}

func (d *MysqlDialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `SELECT COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = {schema} AND TABLE_NAME = {table} AND CONSTRAINT_NAME = 'PRIMARY' ORDER BY ORDINAL_POSITION`)
}

func (d *MysqlDialect) LimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (d *MysqlDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (d *MysqlDialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS CHAR)", expr)
}

func (d *MysqlDialect) TimestampLiteral(ts string) string {
	return "TIMESTAMP '" + ts + "'"
}

func (d *MysqlDialect) MultiColumnCountDistinct() bool {
	return true
}

// AliasInDML is false: MySQL before 8.0.16 and MariaDB before 11.6 reject
// "DELETE FROM t alias".
func (d *MysqlDialect) AliasInDML() bool {
	return false
}

// MariadbDialect renders exactly like MySQL; it only reports its own name.
type MariadbDialect struct {
	MysqlDialect
}

func (d *MariadbDialect) Name() Name {
	return MariaDB
}

package dialect

import (
	"fmt"
	"strings"
)

type OracleDialect struct {
	AnsiDialect
}

func (d *OracleDialect) Name() Name {
	return Oracle
}

func (d *OracleDialect) TablesQuery() string {
	return bindMetadata(d, `SELECT TABLE_NAME FROM ALL_TABLES WHERE OWNER = {schema} ORDER BY TABLE_NAME`)
}

func (d *OracleDialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT COLUMN_NAME, DATA_TYPE, COALESCE(DATA_PRECISION, DATA_LENGTH, 0), NULLABLE FROM ALL_TAB_COLUMNS WHERE OWNER = {schema} AND TABLE_NAME = {table} ORDER BY COLUMN_ID`)
}

func (d *OracleDialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `
SELECT cc.COLUMN_NAME
FROM ALL_CONSTRAINTS c
JOIN ALL_CONS_COLUMNS cc
    ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
    AND c.OWNER = cc.OWNER
WHERE c.CONSTRAINT_TYPE = 'P' AND c.OWNER = {schema} AND c.TABLE_NAME = {table}
ORDER BY cc.POSITION`)
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

// SchemaName upper-cases the owner, which is how Oracle stores unquoted names.
func (d *OracleDialect) SchemaName(input string) string {
	return strings.ToUpper(input)
}

func (d *OracleDialect) LimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("SELECT * FROM (%s) WHERE ROWNUM <= %d", query, limit)
}

func (d *OracleDialect) CastText(expr string) string {
	return fmt.Sprintf("TO_CHAR(%s)", expr)
}

func (d *OracleDialect) TimestampLiteral(ts string) string {
	return "TIMESTAMP '" + ts + "'"
}

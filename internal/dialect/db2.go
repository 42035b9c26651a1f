package dialect

import (
	"fmt"
	"strings"
)

type DB2Dialect struct {
	AnsiDialect
}

func (d *DB2Dialect) Name() Name {
	return DB2
}

func (d *DB2Dialect) TablesQuery() string {
	return bindMetadata(d, `SELECT TABNAME FROM SYSCAT.TABLES WHERE TABSCHEMA = {schema} AND TYPE = 'T' ORDER BY TABNAME`)
}

func (d *DB2Dialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT COLNAME, TYPENAME, LENGTH, NULLS FROM SYSCAT.COLUMNS WHERE TABSCHEMA = {schema} AND TABNAME = {table} ORDER BY COLNO`)
}

func (d *DB2Dialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `SELECT k.COLNAME FROM SYSCAT.KEYCOLUSE k JOIN SYSCAT.TABCONST c ON k.CONSTNAME = c.CONSTNAME AND k.TABSCHEMA = c.TABSCHEMA AND k.TABNAME = c.TABNAME WHERE c.TYPE = 'P' AND c.TABSCHEMA = {schema} AND c.TABNAME = {table} ORDER BY k.COLSEQ`)
}

func (d *DB2Dialect) SchemaName(input string) string {
	return strings.ToUpper(input)
}

func (d *DB2Dialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS VARCHAR(254))", expr)
}

func (d *DB2Dialect) TimestampLiteral(ts string) string {
	return "TIMESTAMP '" + ts + "'"
}

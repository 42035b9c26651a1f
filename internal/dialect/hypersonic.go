package dialect

import (
	"fmt"
)

// HypersonicDialect targets HSQLDB 2.x, which exposes a standard
// INFORMATION_SCHEMA and stores unquoted names upper-case.
type HypersonicDialect struct {
	AnsiDialect
}

func (d *HypersonicDialect) Name() Name {
	return Hypersonic
}

func (d *HypersonicDialect) SchemaName(input string) string {
	if input == "" {
		return "PUBLIC"
	}
	return input
}

func (d *HypersonicDialect) LimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (d *HypersonicDialect) CastText(expr string) string {
	return fmt.Sprintf("CONVERT(%s, SQL_VARCHAR)", expr)
}

func (d *HypersonicDialect) TimestampLiteral(ts string) string {
	return "TIMESTAMP '" + ts + "'"
}

package dialect

import (
	"fmt"
)

// SybaseDialect targets Adaptive Server Enterprise. Metadata comes from the
// system tables because ASE has no INFORMATION_SCHEMA.
type SybaseDialect struct {
	MSSQLDialect
}

func (d *SybaseDialect) Name() Name {
	return Sybase
}

func (d *SybaseDialect) TablesQuery() string {
	return bindMetadata(d, `SELECT o.name FROM sysobjects o WHERE o.type = 'U' AND user_name(o.uid) = {schema} ORDER BY o.name`)
}

func (d *SybaseDialect) ColumnsQuery() string {
	return bindMetadata(d, `SELECT c.name, t.name, c.length, CASE WHEN c.status & 8 = 8 THEN 'YES' ELSE 'NO' END FROM syscolumns c JOIN systypes t ON c.usertype = t.usertype JOIN sysobjects o ON c.id = o.id WHERE user_name(o.uid) = {schema} AND o.name = {table} ORDER BY c.colid`)
}

// PrimaryKeysQuery expands the key columns of the index flagged as primary
// key (status bit 2048) with index_col.
func (d *SybaseDialect) PrimaryKeysQuery() string {
	return bindMetadata(d, `SELECT index_col(o.name, i.indid, n.n) FROM sysobjects o JOIN sysindexes i ON i.id = o.id JOIN (SELECT 1 n UNION ALL SELECT 2 UNION ALL SELECT 3 UNION ALL SELECT 4 UNION ALL SELECT 5 UNION ALL SELECT 6 UNION ALL SELECT 7 UNION ALL SELECT 8) n ON n.n <= i.keycnt WHERE user_name(o.uid) = {schema} AND o.name = {table} AND i.status & 2048 = 2048 ORDER BY n.n`)
}

func (d *SybaseDialect) Placeholder(index int) string {
	return "?"
}

func (d *SybaseDialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS VARCHAR(1024))", expr)
}

// Sybase shares the T-SQL lineage but has no NOT EXISTS preference.
func (d *SybaseDialect) PrefersNotExists() bool {
	return false
}

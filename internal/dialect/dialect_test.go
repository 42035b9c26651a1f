package dialect_test

import (
	"strings"
	"testing"
	"time"

	"db-refcheck/internal/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EveryName(t *testing.T) {
	for _, n := range dialect.Names() {
		d := dialect.Get(n)
		require.NotNil(t, d)
		assert.Equal(t, n, d.Name())
	}
	assert.Equal(t, dialect.Unknown, dialect.Get("informix").Name())
}

func TestParseAndDetect(t *testing.T) {
	assert.Equal(t, dialect.PostgreSQL, dialect.FromDriver("postgres"))
	assert.Equal(t, dialect.PostgreSQL, dialect.FromDriver("pgx"))
	assert.Equal(t, dialect.SQLServer, dialect.FromDriver("sqlserver"))
	assert.Equal(t, dialect.SQLite, dialect.FromDriver("sqlite"))
	assert.Equal(t, dialect.Hypersonic, dialect.Parse("HSQLDB"))
	assert.Equal(t, dialect.Unknown, dialect.Parse("informix"))

	assert.Equal(t, dialect.MariaDB, dialect.FromProductName("10.11.6-MariaDB-log"))
	assert.Equal(t, dialect.MySQL, dialect.FromProductName("MySQL Community Server"))
	assert.Equal(t, dialect.SQLServer, dialect.FromProductName("Microsoft SQL Server 2019"))
	assert.Equal(t, dialect.Sybase, dialect.FromProductName("Adaptive Server Enterprise/16.0"))
	assert.Equal(t, dialect.Oracle, dialect.FromProductName("Oracle Database 19c"))
	assert.Equal(t, dialect.Unknown, dialect.FromProductName("Informix"))
}

func TestClassifyType(t *testing.T) {
	tests := map[string]dialect.ValueClass{
		"varchar(75)":       dialect.ClassText,
		"NVARCHAR":          dialect.ClassText,
		"bpchar":            dialect.ClassText,
		"CLOB":              dialect.ClassText,
		"bigint":            dialect.ClassNumber,
		"int8":              dialect.ClassNumber,
		"NUMBER":            dialect.ClassNumber,
		"double precision":  dialect.ClassNumber,
		"bool":              dialect.ClassBoolean,
		"bit":               dialect.ClassBoolean,
		"timestamp":         dialect.ClassDate,
		"datetime2":         dialect.ClassDate,
		"bytea":             dialect.ClassBinary,
		"longblob":          dialect.ClassBinary,
		"varbinary(16)":     dialect.ClassBinary,
		"uuid":              dialect.ClassOpaque,
		"interval":          dialect.ClassOpaque,
		"":                  dialect.ClassOpaque,
		"int unsigned":      dialect.ClassNumber,
		"character varying": dialect.ClassText,
	}
	for typ, want := range tests {
		assert.Equal(t, want, dialect.ClassifyType(typ), typ)
	}
}

func TestCastOperands(t *testing.T) {
	d := dialect.Get(dialect.PostgreSQL)
	num := func(e string) dialect.Operand { return dialect.Operand{Expr: e, Class: dialect.ClassNumber} }
	txt := func(e string) dialect.Operand { return dialect.Operand{Expr: e, Class: dialect.ClassText} }
	opq := func(e string) dialect.Operand { return dialect.Operand{Expr: e, Class: dialect.ClassOpaque} }

	o, de := dialect.CastOperands(d, num("o.a"), num("d.b"))
	assert.Equal(t, []string{"o.a", "d.b"}, []string{o, de})

	o, de = dialect.CastOperands(d, num("o.a"), txt("d.b"))
	assert.Equal(t, []string{"o.a", "d.b"}, []string{o, de})

	o, de = dialect.CastOperands(d, opq("o.a"), txt("d.b"))
	assert.Equal(t, []string{"CAST(o.a AS TEXT)", "d.b"}, []string{o, de})

	o, de = dialect.CastOperands(d, txt("o.a"), num("d.b"))
	assert.Equal(t, []string{"o.a", "CAST(d.b AS TEXT)"}, []string{o, de})
}

func TestCastText_PerDialect(t *testing.T) {
	want := map[dialect.Name]string{
		dialect.DB2:        "CAST(x AS VARCHAR(254))",
		dialect.Hypersonic: "CONVERT(x, SQL_VARCHAR)",
		dialect.MariaDB:    "CAST(x AS CHAR)",
		dialect.MySQL:      "CAST(x AS CHAR)",
		dialect.Oracle:     "TO_CHAR(x)",
		dialect.PostgreSQL: "CAST(x AS TEXT)",
		dialect.SQLServer:  "CAST(x AS NVARCHAR(MAX))",
		dialect.Sybase:     "CAST(x AS VARCHAR(1024))",
		dialect.Unknown:    "CAST(x AS VARCHAR(255))",
	}
	for n, w := range want {
		assert.Equal(t, w, dialect.Get(n).CastText("x"), string(n))
	}
}

func TestApplyCast(t *testing.T) {
	d := dialect.Get(dialect.MySQL)

	expr, explicit := dialect.ApplyCast(d, "o.a", "")
	assert.False(t, explicit)
	assert.Equal(t, "o.a", expr)

	expr, explicit = dialect.ApplyCast(d, "o.a", "none")
	assert.True(t, explicit)
	assert.Equal(t, "o.a", expr)

	expr, _ = dialect.ApplyCast(d, "o.a", "TEXT")
	assert.Equal(t, "CAST(o.a AS CHAR)", expr)

	expr, _ = dialect.ApplyCast(d, "o.a", "SUBSTR({col}, 1, 10)")
	assert.Equal(t, "SUBSTR(o.a, 1, 10)", expr)

	expr, _ = dialect.ApplyCast(d, "o.a", "SIGNED")
	assert.Equal(t, "CAST(o.a AS SIGNED)", expr)
}

func TestMissingPredicate_ShapePerDialect(t *testing.T) {
	mysql := dialect.Get(dialect.MySQL)
	got := dialect.MissingPredicate(mysql, []string{"o.`customerId`"}, []string{"d.`id`"}, "Customer", "d", "")
	assert.Equal(t, "o.`customerId` NOT IN (SELECT d.`id` FROM `Customer` d WHERE d.`id` IS NOT NULL)", got)

	pg := dialect.Get(dialect.PostgreSQL)
	got = dialect.MissingPredicate(pg, []string{`o."customerId"`}, []string{`d."id"`}, "Customer", "d", "active = 1")
	assert.Equal(t, `NOT EXISTS (SELECT 1 FROM "Customer" d WHERE (active = 1) AND (d."id" = o."customerId"))`, got)

	syb := dialect.Get(dialect.Sybase)
	got = dialect.MissingPredicate(syb, []string{"o.a", "o.b"}, []string{"d.a", "d.b"}, "T", "d", "")
	assert.True(t, strings.HasPrefix(got, "NOT EXISTS ("), got)

	ora := dialect.Get(dialect.Oracle)
	got = dialect.MissingPredicate(ora, []string{"o.a", "o.b"}, []string{"d.a", "d.b"}, "T", "d", "")
	assert.Equal(t, `(o.a, o.b) NOT IN (SELECT d.a, d.b FROM "T" d WHERE (d.a IS NOT NULL) AND (d.b IS NOT NULL))`, got)
}

func TestStatements(t *testing.T) {
	mysql := dialect.Get(dialect.MySQL)
	assert.Equal(t, "SELECT DISTINCT o.`a` FROM `T` o WHERE x = 1",
		dialect.Select(mysql, true, []string{"o.`a`"}, "T", "o", "x = 1"))
	assert.Equal(t, "SELECT COUNT(DISTINCT o.a, o.b) FROM `T` o",
		dialect.Count(mysql, []string{"o.a", "o.b"}, "T", "o", ""))
	assert.Equal(t, "DELETE FROM `T` WHERE `a` IN (1, 2)",
		dialect.Delete(mysql, "T", "o", "`a` IN (1, 2)"))
	assert.Equal(t, "DELETE FROM `T` WHERE `a` = 1",
		dialect.Delete(dialect.Get(dialect.MariaDB), "T", "o", "`a` = 1"))
	assert.Equal(t, "UPDATE `T` SET `a` = 0 WHERE x",
		dialect.Update(mysql, "T", "o", []dialect.Assignment{{Column: "a", Class: dialect.ClassNumber}}, "x"))
	assert.Equal(t, `DELETE FROM "T" o WHERE x`, dialect.Delete(dialect.Get(dialect.PostgreSQL), "T", "o", "x"))

	pg := dialect.Get(dialect.PostgreSQL)
	assert.Equal(t, `SELECT COUNT(*) FROM (SELECT DISTINCT o.a, o.b FROM "T" o) cnt`,
		dialect.Count(pg, []string{"o.a", "o.b"}, "T", "o", ""))
	assert.Equal(t, `UPDATE "T" o SET "name" = '', "ref" = 0, "flag" = NULL WHERE x`,
		dialect.Update(pg, "T", "o", []dialect.Assignment{
			{Column: "name", Class: dialect.ClassText},
			{Column: "ref", Class: dialect.ClassNumber},
			{Column: "flag", Class: dialect.ClassBoolean},
		}, "x"))

	mssql := dialect.Get(dialect.SQLServer)
	assert.Equal(t, "DELETE FROM [T] WHERE [a] = 1", dialect.Delete(mssql, "T", "o", "[a] = 1"))
	assert.Equal(t, "SELECT TOP 1 1 FROM [T]", mssql.LimitRowQuery("SELECT 1 FROM [T]", 1))
}

func TestWhere(t *testing.T) {
	assert.Equal(t, "", dialect.Where("", " "))
	assert.Equal(t, "a = 1", dialect.Where("a = 1"))
	assert.Equal(t, "(a = 1) AND (b = 2 OR c = 3)", dialect.Where("a = 1", "", "b = 2 OR c = 3"))
}

func TestInPredicate_SplitsLargeLists(t *testing.T) {
	d := dialect.Get(dialect.PostgreSQL)
	tuples := make([][]any, 2500)
	for i := range tuples {
		tuples[i] = []any{int64(i + 1)}
	}

	got := dialect.InPredicate(d, []string{"c"}, tuples)

	assert.Equal(t, 3, strings.Count(got, " IN ("))
	assert.Equal(t, 2, strings.Count(got, " OR "))
	assert.True(t, strings.HasPrefix(got, "((c IN (1, 2, "))
	assert.Contains(t, got, "1000)) OR (c IN (1001, ")
}

func TestInPredicate_TuplesAndNulls(t *testing.T) {
	pg := dialect.Get(dialect.PostgreSQL)
	got := dialect.InPredicate(pg, []string{"a", "b"}, [][]any{{1, "x"}, {nil, "y"}})
	assert.Equal(t, "(((a, b) IN ((1, 'x'))) OR (a IS NULL AND b = 'y'))", got)

	mssql := dialect.Get(dialect.SQLServer)
	got = dialect.InPredicate(mssql, []string{"a", "b"}, [][]any{{1, 2}, {3, 4}})
	assert.Equal(t, "((a = 1 AND b = 2) OR (a = 3 AND b = 4))", got)

	assert.Equal(t, "1 = 0", dialect.InPredicate(pg, []string{"a"}, nil))
}

func TestBatches(t *testing.T) {
	tuples := make([][]any, 4500)
	batches := dialect.Batches(tuples, dialect.MaxStatementTuples)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2000)
	assert.Len(t, batches[2], 500)
	assert.Empty(t, dialect.Batches(nil, 10))
}

func TestLiteral(t *testing.T) {
	mysql := dialect.Get(dialect.MySQL)
	pg := dialect.Get(dialect.PostgreSQL)
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "NULL", dialect.Literal(mysql, nil))
	assert.Equal(t, "'O''Brien'", dialect.Literal(mysql, "O'Brien"))
	assert.Equal(t, "'abc'", dialect.Literal(mysql, []byte("abc")))
	assert.Equal(t, "42", dialect.Literal(mysql, int64(42)))
	assert.Equal(t, "1.5", dialect.Literal(mysql, 1.5))
	assert.Equal(t, "1", dialect.Literal(mysql, true))
	assert.Equal(t, "TRUE", dialect.Literal(pg, true))
	assert.Equal(t, "TIMESTAMP '2024-03-01 10:30:00'", dialect.Literal(pg, ts))
	assert.Equal(t, "'2024-03-01 10:30:00'", dialect.Literal(dialect.Get(dialect.SQLServer), ts))
}

func TestMetadataPlaceholders(t *testing.T) {
	assert.Contains(t, dialect.Get(dialect.PostgreSQL).ColumnsQuery(), "$2")
	assert.Contains(t, dialect.Get(dialect.SQLServer).ColumnsQuery(), "@p2")
	assert.Contains(t, dialect.Get(dialect.Oracle).ColumnsQuery(), ":2")
	assert.Contains(t, dialect.Get(dialect.PostgreSQL).PrimaryKeysQuery(), "tc.table_schema = $1 AND tc.table_name = $2")
	assert.Contains(t, dialect.Get(dialect.SQLServer).TablesQuery(), "TABLE_SCHEMA = @p1 ")
	assert.Contains(t, dialect.Get(dialect.Sybase).ColumnsQuery(), "user_name(o.uid) = ? AND o.name = ?")
	assert.Contains(t, dialect.Get(dialect.SQLite).ColumnsQuery(), "pragma_table_info(?2) WHERE ?1 IS NOT NULL")
	assert.Contains(t, dialect.Get(dialect.Hypersonic).TablesQuery(), "TABLE_SCHEMA = ? ")
	for _, n := range dialect.Names() {
		d := dialect.Get(n)
		for _, q := range []string{d.TablesQuery(), d.ColumnsQuery(), d.PrimaryKeysQuery()} {
			assert.NotContains(t, q, "{schema}", n)
			assert.NotContains(t, q, "{table}", n)
		}
	}
	assert.Equal(t, "dbo", dialect.Get(dialect.Sybase).SchemaName(""))
	assert.Equal(t, "LPORTAL", dialect.Get(dialect.Oracle).SchemaName("lportal"))
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"db-refcheck/internal/config"
	"db-refcheck/internal/errs"
)

const rules = `
tableToClassNameMapping:
  Order_: com.shop.Order
  Counter:
ignoreTables:
  - Quartz*
ignoreColumns:
  - ctCollectionId
  - Layout.plid
tableRanks:
  Customer: 1
references:
  - origin:
      table: Order_
      columns: [customerId]
    dest:
      table: Customer
      columns: [id]
  - origin:
      table: "*"
      columns: [classNameId, classPK]
      conditionColumns: [classNameId]
    dest:
      table: "*"
      columns: ["${destTable.classNameId}", "${destTable.primaryKey}"]
    fixAction: delete
  - origin:
      table: AssetEntry
      columns: [title]
    hidden: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(rules), "")
	require.NoError(t, err)

	assert.Equal(t, "com.shop.Order", cfg.TableToClassNameMapping["Order_"])
	blank, ok := cfg.TableToClassNameMapping["Counter"]
	assert.True(t, ok, "explicitly blank mapping must be kept")
	assert.Empty(t, blank)

	assert.Equal(t, []string{"Quartz*"}, cfg.IgnoreTables)
	assert.Equal(t, []string{"ctCollectionId", "Layout.plid"}, cfg.IgnoreColumns)
	assert.Equal(t, 1, cfg.TableRanks["Customer"])

	require.Len(t, cfg.References, 3)
	assert.Equal(t, "Order_", cfg.References[0].Origin.Table)
	assert.Equal(t, []string{"id"}, cfg.References[0].Dest.Columns)
	assert.Equal(t, "delete", cfg.References[1].FixAction)
	assert.Equal(t, []string{"classNameId"}, cfg.References[1].Origin.ConditionColumns)
	assert.Nil(t, cfg.References[2].Dest)
	assert.True(t, cfg.References[2].Hidden)
}

func TestParse_Malformed(t *testing.T) {
	_, err := config.Parse([]byte("references: [origin: {"), "")
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestLoad_IncludeSplicesReferences(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra.yml", `
- origin: {table: Layout, columns: [groupId]}
  dest: {table: Group_, columns: [groupId]}
`)
	writeFile(t, dir, "module.yml", `
references:
  - origin: {table: Module, columns: [layoutId]}
    dest: {table: Layout, columns: [layoutId]}
`)
	main := writeFile(t, dir, "references.yml", `
references:
  - origin: {table: A, columns: [bId]}
    dest: {table: B, columns: [id]}
  - !include extra.yml
  - !include module.yml
`)

	cfg, err := config.Load(main)
	require.NoError(t, err)
	require.Len(t, cfg.References, 3)
	assert.Equal(t, "A", cfg.References[0].Origin.Table)
	assert.Equal(t, "Layout", cfg.References[1].Origin.Table)
	assert.Equal(t, "Module", cfg.References[2].Origin.Table)
}

func TestLoad_IncludeAsValue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ignored.yml", "- Temp*\n- Backup*\n")
	main := writeFile(t, dir, "references.yml", "ignoreTables: !include ignored.yml\n")

	cfg, err := config.Load(main)
	require.NoError(t, err)
	assert.Equal(t, []string{"Temp*", "Backup*"}, cfg.IgnoreTables)
}

func TestLoad_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yml", "references:\n  - !include b.yml\n")
	writeFile(t, dir, "b.yml", "references:\n  - !include a.yml\n")

	_, err := config.Load(filepath.Join(dir, "a.yml"))
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "references.yml", "references: []\n")
	writeFile(t, dir, "references-7.yml", "references: []\n")
	writeFile(t, dir, "references-7.4.yml", "references: []\n")

	p, err := config.Locate(dir, "7.4.3")
	require.NoError(t, err)
	assert.Equal(t, "references-7.4.yml", filepath.Base(p))

	p, err = config.Locate(dir, "7.3.0")
	require.NoError(t, err)
	assert.Equal(t, "references-7.yml", filepath.Base(p))

	p, err = config.Locate(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "references.yml", filepath.Base(p))

	_, err = config.Locate(t.TempDir(), "7.4")
	assert.True(t, errs.IsConfig(err))
}

func TestLiteralDependencies(t *testing.T) {
	cfg, err := config.Parse([]byte(rules), "")
	require.NoError(t, err)

	deps := cfg.LiteralDependencies()
	assert.Equal(t, map[string][]string{"Order_": {"Customer"}}, deps)
}

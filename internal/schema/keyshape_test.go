package schema_test

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"db-refcheck/internal/schema"
)

func TestKeyShaped(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"id", true},
		{"userId", true},
		{"parent_key", true},
		{"groupPK", true},
		{"externalReferenceCode", false},
		{"valid", false},
		{"name", false},
		{"uuid_", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, schema.KeyShaped(tt.name), tt.name)
	}
}

func TestKeyShaped_GeneratedNames(t *testing.T) {
	gofakeit.Seed(42)
	for i := 0; i < 50; i++ {
		word := strings.ToLower(gofakeit.LetterN(uint(gofakeit.Number(3, 8))))
		assert.True(t, schema.KeyShaped(word+"Id"), word+"Id")
		assert.True(t, schema.KeyShaped(word+"_id"), word+"_id")
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, schema.Matches("*", "anything"))
	assert.True(t, schema.Matches("Quartz*", "QUARTZ_JOB"))
	assert.True(t, schema.Matches("*_", "User_"))
	assert.True(t, schema.Matches("*Rel*", "AssetEntryRel"))
	assert.False(t, schema.Matches("", "x"))
	assert.True(t, schema.MatchesColumn("Layout.plid", "layout", "PLID"))
	assert.False(t, schema.MatchesColumn("Layout.plid", "Group_", "plid"))
	assert.True(t, schema.MatchesColumn("ctCollectionId", "any", "ctCollectionId"))
}

func TestColumnNames(t *testing.T) {
	tbl := schema.NewTable("AssetEntry", []*schema.Column{
		{Name: "entryId"}, {Name: "groupId"}, {Name: "classNameId"}, {Name: "classPK"}, {Name: "title"},
	}, []string{"entryId"})

	assert.Len(t, tbl.ColumnNames("*"), 5)
	assert.Equal(t, []string{"groupId"}, tbl.ColumnNames("GROUPID"))
	assert.Equal(t, []string{"classNameId", "classPK"}, tbl.ColumnNames("class*"))
	assert.Equal(t, []string{"entryId", "groupId", "classNameId"}, tbl.ColumnNames("*id"))
	assert.Empty(t, tbl.ColumnNames("missing"))
	assert.True(t, tbl.HasColumns([]string{"title", "'constant'"}))
	assert.False(t, tbl.HasColumns([]string{"nope"}))
	assert.Equal(t, 3, tbl.ColumnPosition("classpk"))
	assert.True(t, tbl.IsPrimaryKey("ENTRYID"))
}

func TestColumnPosition_MissingStaysMissing(t *testing.T) {
	tbl := schema.NewTable("Layout", []*schema.Column{{Name: "plid"}, {Name: "groupId"}}, []string{"plid"})

	for i := 0; i < 3; i++ {
		assert.Equal(t, -1, tbl.ColumnPosition("nope"))
		assert.Equal(t, -1, tbl.ColumnPosition("NoPe"))
		assert.Nil(t, tbl.Column("nope"))
	}
	assert.Equal(t, 1, tbl.ColumnPosition("GROUPID"))
	assert.Equal(t, 1, tbl.ColumnPosition("groupid"))
}

func TestIsConstant(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"'foo'", true},
		{" 'a b' ", true},
		{"20087", true},
		{"-1", true},
		{"0.5", true},
		{"classNameId", false},
		{"1e5", false},
		{"id2", false},
		{"'", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, schema.IsConstant(tt.in), tt.in)
	}
	assert.False(t, schema.IsStringLiteral("20087"))
	assert.True(t, schema.IsStringLiteral("'20087'"))
}

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"db-refcheck/internal/schema"
)

func TestRankTables_Simple(t *testing.T) {
	// OrderItems -> Orders -> Users
	ranks := schema.RankTables(map[string][]string{
		"OrderItems": {"Orders"},
		"Orders":     {"Users"},
	})

	assert.Equal(t, 1, ranks["users"])
	assert.Equal(t, 2, ranks["orders"])
	assert.Equal(t, 3, ranks["orderitems"])
	assert.Zero(t, ranks["unrelated"])
}

func TestRankTables_ComplexCircular(t *testing.T) {
	// A -> B -> C -> D -> E -> A, F -> E, G alone
	ranks := schema.RankTables(map[string][]string{
		"A": {"B"}, "B": {"C"}, "C": {"D"}, "D": {"E"}, "E": {"A"},
		"F": {"E"},
		"G": nil,
	})

	assert.Len(t, ranks, 7)
	assert.Equal(t, 1, ranks["g"], "independent table comes first")

	seen := make(map[int]bool)
	for _, r := range ranks {
		assert.False(t, seen[r], "ranks must be distinct")
		seen[r] = true
	}
	assert.Greater(t, ranks["f"], ranks["e"])
}

func TestRankTables_SelfReferenceIgnored(t *testing.T) {
	ranks := schema.RankTables(map[string][]string{
		"Folder": {"Folder", "Group_"},
	})
	assert.Equal(t, 1, ranks["group_"])
	assert.Equal(t, 2, ranks["folder"])
}

package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKeyword(t *testing.T) {
	assert.Equal(t, []string{"sushi", "ginza"}, splitKeyword("sushi ginza"))
	assert.Equal(t, []string{"sushi", "ginza"}, splitKeyword("sushi　ginza"))
	assert.Equal(t, []string{"sushi"}, splitKeyword("  sushi  "))
	assert.Empty(t, splitKeyword(""))
	assert.Empty(t, splitKeyword(" 　 "))
}

func TestPositiveID(t *testing.T) {
	id, ok := positiveID("7")
	assert.True(t, ok)
	assert.Equal(t, uint64(7), id)

	for _, raw := range []string{"", "0", "-3", "abc", "1.5"} {
		_, ok := positiveID(raw)
		assert.False(t, ok, raw)
	}
}

func TestBuildSearchWhereAndsTokens(t *testing.T) {
	cond, args := buildSearchWhere(ShopSearchQuery{Keyword: "sushi　ginza"})

	// Published filter plus one group per token.
	assert.Contains(t, cond, "s.is_published = 1")
	assert.Equal(t, 2, strings.Count(cond, "LOWER(s.name) LIKE ?"))
	// Each token binds five LIKE patterns.
	assert.Len(t, args, 10)
	assert.Equal(t, "%sushi%", args[0])
	assert.Equal(t, "%ginza%", args[5])
}

func TestBuildSearchWhereIDFilters(t *testing.T) {
	cond, args := buildSearchWhere(ShopSearchQuery{CategoryID: "3", TagID: "9"})
	assert.Contains(t, cond, "s.category_id = ?")
	assert.Contains(t, cond, "st2.tag_id = ?")
	assert.Equal(t, []any{uint64(3), uint64(9)}, args)

	// Non-numeric values are ignored rather than rejected.
	cond, args = buildSearchWhere(ShopSearchQuery{CategoryID: "ramen", TagID: "-1"})
	assert.NotContains(t, cond, "category_id = ?")
	assert.Empty(t, args)
}

func TestBuildSearchWhereKeywordIsLowercased(t *testing.T) {
	_, args := buildSearchWhere(ShopSearchQuery{Keyword: "Sushi"})
	assert.Equal(t, "%sushi%", args[0])
}

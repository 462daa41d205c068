package discovery

import (
	"testing"

	"showcase/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBookmarks_ToggleTwiceRestores(t *testing.T) {
	b := NewBookmarks()

	for _, id := range []string{"1", "3", "5"} {
		before := b.Has(id)
		b.Toggle(id)
		b.Toggle(id)
		assert.Equal(t, before, b.Has(id))
	}

	assert.True(t, b.Toggle("5"))
	assert.True(t, b.Toggle("1"))
	assert.Equal(t, []string{"1", "5"}, b.IDs())
	assert.Equal(t, 2, b.Len())
	assert.False(t, b.Toggle("5"))
	assert.Equal(t, []string{"1"}, b.IDs())
}

func TestQueryState(t *testing.T) {
	q := NewQueryState()
	assert.Equal(t, models.CategoryAll, q.Category)
	assert.Equal(t, models.SortNewest, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.False(t, q.Narrowed())

	q.RawSearch = "typo"
	assert.False(t, q.Narrowed(), "only committed search narrows")

	q.DebouncedSearch = "typo"
	assert.True(t, q.Narrowed())
	assert.Equal(t, "typo", q.PipelineQuery().Search)

	q = NewQueryState()
	q.Category = models.CategoryDesign
	assert.True(t, q.Narrowed())
	assert.Equal(t, models.CategoryDesign, q.PipelineQuery().Category)
}

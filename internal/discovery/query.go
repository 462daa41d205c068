package discovery

import (
	"sort"

	"showcase/internal/models"
	"showcase/internal/pipeline"
)

// QueryState is everything the user selected in the controls bar
type QueryState struct {
	Category        models.Category `json:"category"`
	RawSearch       string          `json:"raw_search"`
	DebouncedSearch string          `json:"search"`
	Sort            models.SortMode `json:"sort"`
	Page            int             `json:"page"`
}

func NewQueryState() QueryState {
	return QueryState{
		Category: models.CategoryAll,
		Sort:     models.SortNewest,
		Page:     1,
	}
}

// PipelineQuery is the subset of the state the pipeline reads
func (q QueryState) PipelineQuery() pipeline.Query {
	return pipeline.Query{
		Category: q.Category,
		Search:   q.DebouncedSearch,
		Sort:     q.Sort,
	}
}

// Narrowed reports whether a category or committed search restricts the results
func (q QueryState) Narrowed() bool {
	return q.DebouncedSearch != "" || q.Category != models.CategoryAll
}

// Bookmarks is the set of articles a visitor marked. It lives as long as the engine.
type Bookmarks struct {
	ids map[string]struct{}
}

func NewBookmarks() *Bookmarks {
	return &Bookmarks{ids: make(map[string]struct{})}
}

// Toggle flips membership of id and returns the new membership
func (b *Bookmarks) Toggle(id string) bool {
	if _, ok := b.ids[id]; ok {
		delete(b.ids, id)
		return false
	}
	b.ids[id] = struct{}{}
	return true
}

func (b *Bookmarks) Has(id string) bool {
	_, ok := b.ids[id]
	return ok
}

func (b *Bookmarks) Len() int {
	return len(b.ids)
}

// IDs returns the bookmarked ids sorted
func (b *Bookmarks) IDs() []string {
	out := make([]string, 0, len(b.ids))
	for id := range b.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

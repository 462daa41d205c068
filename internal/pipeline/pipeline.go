package pipeline

import (
	"slices"
	"strings"

	"showcase/internal/models"
)

// Query is the part of the view state the pipeline depends on
type Query struct {
	Category models.Category `json:"category"`
	Search   string          `json:"search"`
	Sort     models.SortMode `json:"sort"`
}

// RankFunc orders articles for the Most Popular view. It returns a negative
// number when a ranks before b, like strings.Compare.
type RankFunc func(a, b models.Article) int

// TitleRank stands in for a popularity signal: titles ascending, case-insensitive
func TitleRank(a, b models.Article) int {
	if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

// Pipeline filters and orders articles. It holds no state besides the ranking.
type Pipeline struct {
	rank RankFunc
}

type Option func(*Pipeline)

// WithRanking replaces the Most Popular ordering
func WithRanking(rank RankFunc) Option {
	return func(p *Pipeline) {
		if rank != nil {
			p.rank = rank
		}
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{rank: TitleRank}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compute returns the articles matching q in display order. The input slice
// is never reordered; the result is always a fresh slice.
func (p *Pipeline) Compute(articles []models.Article, q Query) []models.Article {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if q.Category != "" && q.Category != models.CategoryAll && article.Category != q.Category {
			continue
		}
		if term != "" && !matchesSearch(article, term) {
			continue
		}
		result = append(result, article)
	}

	switch q.Sort {
	case models.SortMostPopular:
		slices.SortStableFunc(result, p.rank)
	default:
		slices.SortStableFunc(result, func(a, b models.Article) int {
			return b.PublishDate.Compare(a.PublishDate)
		})
	}

	return result
}

// matchesSearch expects term to be lower-cased already
func matchesSearch(article models.Article, term string) bool {
	return strings.Contains(strings.ToLower(article.Title), term) ||
		strings.Contains(strings.ToLower(article.Excerpt), term)
}

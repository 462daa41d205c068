package catalog

import (
	"context"
	"fmt"
	"strings"

	"showcase/internal/models"

	"go.uber.org/zap"
)

// Source produces the article records the store is built from. Implementations
// may read literals, files, databases or remote feeds.
type Source interface {
	Load(ctx context.Context) ([]models.Article, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) ([]models.Article, error)

func (f SourceFunc) Load(ctx context.Context) ([]models.Article, error) {
	return f(ctx)
}

// Store is the immutable article collection backing the showcase.
// It is safe for concurrent readers since nothing mutates it after New.
type Store struct {
	articles []models.Article
	byID     map[string]int
}

// New validates articles and builds a store preserving their order
func New(articles []models.Article) (*Store, error) {
	s := &Store{
		articles: make([]models.Article, 0, len(articles)),
		byID:     make(map[string]int, len(articles)),
	}

	for i, article := range articles {
		if strings.TrimSpace(article.ID) == "" {
			return nil, fmt.Errorf("article at position %d has no id", i)
		}
		if _, dup := s.byID[article.ID]; dup {
			return nil, fmt.Errorf("duplicate article id '%s'", article.ID)
		}
		if !article.Category.Known() {
			return nil, fmt.Errorf("article '%s' has unknown category '%s'", article.ID, article.Category)
		}
		if strings.TrimSpace(article.Title) == "" {
			return nil, fmt.Errorf("article '%s' has no title", article.ID)
		}

		article.Tags = append([]string(nil), article.Tags...)
		s.byID[article.ID] = len(s.articles)
		s.articles = append(s.articles, article)
	}

	return s, nil
}

// Build loads articles from src and validates them into a Store
func Build(ctx context.Context, src Source) (*Store, error) {
	articles, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	store, err := New(articles)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	zap.S().Infof("Catalog ready with %d articles", store.Len())
	return store, nil
}

// Articles returns the collection in store order. The returned slice is
// capacity-limited so appends never write into the store.
func (s *Store) Articles() []models.Article {
	return s.articles[:len(s.articles):len(s.articles)]
}

// Get returns the article with the given id
func (s *Store) Get(id string) (models.Article, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Article{}, false
	}
	return s.articles[i], true
}

func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Store) Len() int {
	return len(s.articles)
}

// CategoryCounts returns how many articles each known category holds
func (s *Store) CategoryCounts() map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}
	for _, a := range s.articles {
		counts[a.Category]++
	}
	return counts
}

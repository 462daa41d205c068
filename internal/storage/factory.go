package storage

import (
	"context"
	"fmt"

	"showcase/internal/models"

	"go.uber.org/zap"
)

// NewStorage creates a new SQLite storage instance
func NewStorage(dataDir string) (Storage, error) {
	return NewSQLiteStorage(dataDir)
}

// Seeder supplies the articles written into an empty store
type Seeder interface {
	Load(ctx context.Context) ([]models.Article, error)
}

// EnsureSeeded fills an empty store from seed. A store that already holds
// articles is left untouched.
func EnsureSeeded(ctx context.Context, s Storage, seed Seeder) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		zap.S().Infof("Catalog database holds %d articles", count)
		return nil
	}

	articles, err := seed.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load seed articles: %w", err)
	}
	zap.S().Infof("Seeding empty catalog database with %d articles", len(articles))
	return s.SaveArticles(ctx, articles)
}

package storage

import (
	"context"

	"showcase/internal/models"
)

// Storage defines the interface for catalog persistence backends
type Storage interface {
	SaveArticles(ctx context.Context, articles []models.Article) error
	LoadArticles(ctx context.Context) ([]models.Article, error)
	Load(ctx context.Context) ([]models.Article, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

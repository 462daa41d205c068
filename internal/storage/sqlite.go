package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"showcase/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const dbFile = "showcase.db"

type SQLiteStorage struct {
	db    *sql.DB
	mutex sync.RWMutex
}

func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	// Ensure data directory exists with secure permissions (0750)
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	zap.S().Infof("Initializing database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			zap.S().Warnf("Failed to set %s: %v", pragma, err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		excerpt TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		publish_date TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]', -- JSON array
		image TEXT NOT NULL DEFAULT '',
		full_content TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_articles_position ON articles(position);",
		"CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);",
	}

	if _, err := db.Exec(articlesTable); err != nil {
		return fmt.Errorf("failed to create articles table: %v", err)
	}
	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}
	return nil
}

// SaveArticles replaces the stored catalog with articles, keeping their order
func (s *SQLiteStorage) SaveArticles(ctx context.Context, articles []models.Article) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				zap.S().Warnf("Failed to rollback transaction: %v", err)
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM articles"); err != nil {
		return fmt.Errorf("failed to delete existing articles: %v", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (id, position, title, excerpt, category, author, avatar, publish_date, tags, image, full_content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %v", err)
	}
	defer stmt.Close()

	for i, article := range articles {
		tags := article.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags of article '%s': %v", article.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			article.ID,
			i,
			article.Title,
			article.Excerpt,
			string(article.Category),
			article.Author.Name,
			article.Author.Avatar,
			article.PublishedOn(),
			string(tagsJSON),
			article.Image,
			article.FullContent,
		); err != nil {
			return fmt.Errorf("failed to insert article '%s': %v", article.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	committed = true

	zap.S().Infof("Saved %d articles to sqlite", len(articles))
	return nil
}

// LoadArticles returns the stored catalog in saved order
func (s *SQLiteStorage) LoadArticles(ctx context.Context) ([]models.Article, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, excerpt, category, author, avatar, publish_date, tags, image, full_content
		FROM articles
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %v", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var (
			article  models.Article
			category string
			date     string
			tagsJSON string
		)
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Excerpt,
			&category,
			&article.Author.Name,
			&article.Author.Avatar,
			&date,
			&tagsJSON,
			&article.Image,
			&article.FullContent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan article: %v", err)
		}

		article.Category = models.Category(category)
		if article.PublishDate, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("article '%s': %w", article.ID, err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &article.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags of article '%s': %v", article.ID, err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %v", err)
	}

	return articles, nil
}

// Load implements catalog.Source
func (s *SQLiteStorage) Load(ctx context.Context) ([]models.Article, error) {
	return s.LoadArticles(ctx)
}

func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %v", err)
	}
	return count, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

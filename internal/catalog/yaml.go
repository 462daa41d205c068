package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"showcase/internal/models"

	"gopkg.in/yaml.v3"
)

// YAMLFile loads articles from a YAML document of the form
//
//	articles:
//	  - id: "1"
//	    title: ...
//	    category: Lifestyle
//	    publish_date: "2024-01-15"
type YAMLFile struct {
	Path string
}

type yamlCatalog struct {
	Articles []yamlArticle `yaml:"articles"`
}

type yamlArticle struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Excerpt     string   `yaml:"excerpt"`
	Category    string   `yaml:"category"`
	Author      string   `yaml:"author"`
	Avatar      string   `yaml:"avatar"`
	PublishDate string   `yaml:"publish_date"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
	FullContent string   `yaml:"full_content"`
}

func (y YAMLFile) Load(ctx context.Context) ([]models.Article, error) {
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return DecodeYAML(bytes.NewReader(data))
}

// DecodeYAML parses a YAML catalog document
func DecodeYAML(r io.Reader) ([]models.Article, error) {
	var doc yamlCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	articles := make([]models.Article, 0, len(doc.Articles))
	for i, item := range doc.Articles {
		category, err := models.ParseCategory(item.Category)
		if err != nil || category == models.CategoryAll {
			return nil, fmt.Errorf("article %d (%s): unknown category '%s'", i, item.ID, item.Category)
		}

		published, err := models.ParseDate(item.PublishDate)
		if err != nil {
			return nil, fmt.Errorf("article %d (%s): %w", i, item.ID, err)
		}

		articles = append(articles, models.Article{
			ID:          item.ID,
			Title:       item.Title,
			Excerpt:     item.Excerpt,
			Category:    category,
			Author:      models.Author{Name: item.Author, Avatar: item.Avatar},
			PublishDate: published,
			Tags:        item.Tags,
			Image:       item.Image,
			FullContent: item.FullContent,
		})
	}

	return articles, nil
}

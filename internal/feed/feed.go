// Package feed imports RSS and Atom feeds as showcase articles.
package feed

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"showcase/internal/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	excerptLength = 200
	maxParallel   = 4
)

var ErrNoArticles = errors.New("no feed items matched a category")

// Keywords maps each category to the words that place an item in it. Item
// categories are checked before title words.
var Keywords = map[models.Category][]string{
	models.CategoryLifestyle: {"lifestyle", "wellness", "health", "travel", "food", "living", "home", "minimalism"},
	models.CategoryTech:      {"tech", "technology", "software", "programming", "code", "developer", "ai", "computing", "web"},
	models.CategoryCraft:     {"craft", "crafts", "handmade", "woodworking", "ceramics", "pottery", "diy", "making", "artisan"},
	models.CategoryDesign:    {"design", "typography", "ux", "ui", "architecture", "interior", "color", "illustration"},
}

// Importer fetches a set of feeds in parallel and converts their items
type Importer struct {
	urls    []string
	timeout time.Duration
	policy  *bluemonday.Policy
	now     func() time.Time
}

func NewImporter(urls []string, timeout time.Duration) *Importer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Importer{
		urls:    urls,
		timeout: timeout,
		policy:  bluemonday.StrictPolicy(),
		now:     time.Now,
	}
}

// Load implements catalog.Source. Feeds that fail are logged and skipped;
// Load fails only when no feed yields a categorised item.
func (i *Importer) Load(ctx context.Context) ([]models.Article, error) {
	if len(i.urls) == 0 {
		return nil, errors.New("no feed urls configured")
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	results := make([][]models.Article, len(i.urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for idx, url := range i.urls {
		idx, url := idx, url
		g.Go(func() error {
			articles, err := i.fetchFeed(gctx, url)
			if err != nil {
				zap.S().Warnf("Error fetching feed %s: %v", url, err)
				return nil
			}
			results[idx] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Article
	seen := make(map[string]bool)
	for _, articles := range results {
		for _, a := range articles {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			all = append(all, a)
		}
	}
	if len(all) == 0 {
		return nil, ErrNoArticles
	}

	zap.S().Infof("Imported %d articles from %d feeds", len(all), len(i.urls))
	return all, nil
}

func (i *Importer) fetchFeed(ctx context.Context, url string) ([]models.Article, error) {
	// gofeed parsers carry per-parse state
	feed, err := gofeed.NewParser().ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %v", err)
	}
	return i.convert(feed), nil
}

// Convert maps the items of an already parsed feed
func (i *Importer) Convert(feed *gofeed.Feed) []models.Article {
	return i.convert(feed)
}

func (i *Importer) convert(feed *gofeed.Feed) []models.Article {
	var articles []models.Article
	for _, item := range feed.Items {
		title := i.plain(item.Title)
		if title == "" {
			continue
		}

		tags := make([]string, 0, len(item.Categories))
		for _, c := range item.Categories {
			if tag := i.plain(c); tag != "" {
				tags = append(tags, tag)
			}
		}

		category, ok := categorize(tags, title)
		if !ok {
			zap.S().Debugf("Skipping feed item '%s': no matching category", title)
			continue
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}

		article := models.Article{
			ID:          itemID(feed, item),
			Title:       title,
			Excerpt:     truncate(i.plain(item.Description), excerptLength),
			Category:    category,
			Author:      author(feed, item),
			PublishDate: i.published(item),
			Tags:        tags,
			Image:       image(item),
			FullContent: i.plain(body),
		}
		if article.Excerpt == "" {
			article.Excerpt = truncate(article.FullContent, excerptLength)
		}
		articles = append(articles, article)
	}
	return articles
}

// plain strips markup and collapses whitespace
func (i *Importer) plain(s string) string {
	text := html.UnescapeString(i.policy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

func (i *Importer) published(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return i.now().UTC()
	}
}

func categorize(tags []string, title string) (models.Category, bool) {
	for _, tag := range tags {
		for _, category := range models.Categories {
			if strings.EqualFold(tag, string(category)) {
				return category, true
			}
		}
	}

	words := make(map[string]bool)
	for _, tag := range tags {
		words[strings.ToLower(tag)] = true
	}
	for _, w := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	for _, category := range models.Categories {
		for _, keyword := range Keywords[category] {
			if words[keyword] {
				return category, true
			}
		}
	}
	return "", false
}

func itemID(feed *gofeed.Feed, item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = feed.Link + "#" + item.Title
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func author(feed *gofeed.Feed, item *gofeed.Item) models.Author {
	a := models.Author{Name: feed.Title}
	if item.Author != nil && item.Author.Name != "" {
		a.Name = item.Author.Name
	}
	if feed.Image != nil {
		a.Avatar = feed.Image.URL
	}
	return a
}

func image(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}

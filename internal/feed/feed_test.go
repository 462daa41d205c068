package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showcase/internal/models"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const techFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Workshop Notes</title>
  <link>https://example.com</link>
  <description>Notes</description>
  <item>
    <title>Shipping Go code &amp; sleeping well</title>
    <link>https://example.com/go</link>
    <guid>https://example.com/go</guid>
    <description><![CDATA[<p>How <strong>we</strong> deploy.</p>]]></description>
    <category>Programming</category>
    <pubDate>Mon, 15 Jan 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Hand thrown ceramics for beginners</title>
    <link>https://example.com/ceramics</link>
    <description>Clay, wheels and patience.</description>
    <pubDate>Fri, 12 Jan 2024 10:00:00 GMT</pubDate>
    <enclosure url="https://example.com/bowl.jpg" type="image/jpeg" length="1"/>
  </item>
  <item>
    <title>Quarterly earnings call</title>
    <link>https://example.com/earnings</link>
    <description>Numbers.</description>
  </item>
</channel>
</rss>`

const designFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Studio</title>
  <link>https://studio.example.com</link>
  <description>Design</description>
  <item>
    <title>Grid systems revisited</title>
    <link>https://studio.example.com/grid</link>
    <category>Design</category>
    <description>Columns.</description>
    <pubDate>Wed, 10 Jan 2024 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func serve(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestImporter_Load(t *testing.T) {
	importer := NewImporter([]string{serve(t, techFeed), serve(t, designFeed)}, 5*time.Second)

	articles, err := importer.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 3)

	first := articles[0]
	assert.Equal(t, "Shipping Go code & sleeping well", first.Title)
	assert.Equal(t, models.CategoryTech, first.Category)
	assert.Equal(t, "How we deploy.", first.Excerpt)
	assert.Equal(t, "Workshop Notes", first.Author.Name)
	assert.Equal(t, []string{"Programming"}, first.Tags)
	assert.Equal(t, "2024-01-15", first.PublishedOn())
	assert.NotEmpty(t, first.ID)

	assert.Equal(t, models.CategoryCraft, articles[1].Category)
	assert.Equal(t, "https://example.com/bowl.jpg", articles[1].Image)

	assert.Equal(t, models.CategoryDesign, articles[2].Category)
}

func TestImporter_SkipsFailingFeeds(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	importer := NewImporter([]string{broken.URL, serve(t, designFeed)}, 5*time.Second)
	articles, err := importer.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Grid systems revisited", articles[0].Title)
}

func TestImporter_DeduplicatesItems(t *testing.T) {
	url := serve(t, designFeed)
	importer := NewImporter([]string{url, url}, 5*time.Second)

	articles, err := importer.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestImporter_Errors(t *testing.T) {
	_, err := NewImporter(nil, time.Second).Load(context.Background())
	assert.Error(t, err)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	_, err = NewImporter([]string{broken.URL}, time.Second).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoArticles)
}

func TestConvert_UsesNowWithoutDate(t *testing.T) {
	feed, err := gofeed.NewParser().ParseString(techFeed)
	require.NoError(t, err)

	importer := NewImporter(nil, 0)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	importer.now = func() time.Time { return fixed }

	feed.Items[0].PublishedParsed = nil
	articles := importer.Convert(feed)
	require.Len(t, articles, 2)
	assert.Equal(t, "2024-03-01", articles[0].PublishedOn())
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		title    string
		expected models.Category
		ok       bool
	}{
		{"category tag wins", []string{"Design", "code"}, "Anything", models.CategoryDesign, true},
		{"keyword tag", []string{"woodworking"}, "Weekend project", models.CategoryCraft, true},
		{"title word", nil, "Why UX writing matters", models.CategoryDesign, true},
		{"substring is not a word", nil, "Aimless wandering", "", false},
		{"no match", []string{"finance"}, "Markets today", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := categorize(tt.tags, tt.title)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abc def", 4))
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for publish dates
const DateLayout = "2006-01-02"

// Category is the editorial section an article belongs to
type Category string

const (
	CategoryAll       Category = "All"
	CategoryLifestyle Category = "Lifestyle"
	CategoryTech      Category = "Tech"
	CategoryCraft     Category = "Craft"
	CategoryDesign    Category = "Design"
)

// Categories lists the known article categories in display order
var Categories = []Category{CategoryLifestyle, CategoryTech, CategoryCraft, CategoryDesign}

// Known reports whether c is one of the article categories. All is a filter, not a category.
func (c Category) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category name case-insensitively. "All" is accepted.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(CategoryAll)) {
		return CategoryAll, nil
	}
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown category '%s'", s)
}

// SortMode selects the ordering of the showcase
type SortMode string

const (
	SortNewest      SortMode = "Newest"
	SortMostPopular SortMode = "Most Popular"
)

// SortModes lists the sort options in display order
var SortModes = []SortMode{SortNewest, SortMostPopular}

func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest":
		return SortNewest, nil
	case "most popular", "most_popular", "most-popular", "popular":
		return SortMostPopular, nil
	default:
		return "", fmt.Errorf("unknown sort mode '%s'", s)
	}
}

// Author of an article
type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Article is an immutable showcase record
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Category    Category  `json:"category"`
	Author      Author    `json:"author"`
	PublishDate time.Time `json:"-"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image"`
	FullContent string    `json:"full_content,omitempty"`
}

// PublishedOn returns the publish date as YYYY-MM-DD
func (a Article) PublishedOn() string {
	return a.PublishDate.Format(DateLayout)
}

// DisplayDate renders the publish date the way article cards show it, e.g. "January 15, 2024"
func (a Article) DisplayDate() string {
	return a.PublishDate.Format("January 2, 2006")
}

// CardTags returns the tags shown on a card and the number of hidden ones
func (a Article) CardTags() ([]string, int) {
	if len(a.Tags) <= 2 {
		return a.Tags, 0
	}
	return a.Tags[:2], len(a.Tags) - 2
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s': %w", s, err)
	}
	return t, nil
}

// ArticleCard is the JSON shape of an article in list views
type ArticleCard struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Category    Category `json:"category"`
	Author      Author   `json:"author"`
	PublishDate string   `json:"publish_date"`
	DisplayDate string   `json:"display_date"`
	Tags        []string `json:"tags"`
	MoreTags    int      `json:"more_tags"`
	Image       string   `json:"image"`
	Bookmarked  bool     `json:"bookmarked"`
}

// ArticleDetail is the JSON shape of an article preview
type ArticleDetail struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Category    Category `json:"category"`
	Author      Author   `json:"author"`
	PublishDate string   `json:"publish_date"`
	DisplayDate string   `json:"display_date"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	FullContent string   `json:"full_content"`
	Bookmarked  bool     `json:"bookmarked"`
}

// Card builds the list representation of a
func (a Article) Card(bookmarked bool) ArticleCard {
	tags, more := a.CardTags()
	return ArticleCard{
		ID:          a.ID,
		Title:       a.Title,
		Excerpt:     a.Excerpt,
		Category:    a.Category,
		Author:      a.Author,
		PublishDate: a.PublishedOn(),
		DisplayDate: a.DisplayDate(),
		Tags:        tags,
		MoreTags:    more,
		Image:       a.Image,
		Bookmarked:  bookmarked,
	}
}

// Detail builds the preview representation of a
func (a Article) Detail(bookmarked bool) ArticleDetail {
	return ArticleDetail{
		ID:          a.ID,
		Title:       a.Title,
		Excerpt:     a.Excerpt,
		Category:    a.Category,
		Author:      a.Author,
		PublishDate: a.PublishedOn(),
		DisplayDate: a.DisplayDate(),
		Tags:        a.Tags,
		Image:       a.Image,
		FullContent: a.FullContent,
		Bookmarked:  bookmarked,
	}
}

package catalog

import (
	"context"
	"time"

	"showcase/internal/models"
)

// Static serves the built-in editorial collection
type Static struct{}

func (Static) Load(ctx context.Context) ([]models.Article, error) {
	return DefaultArticles(), nil
}

func day(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultArticles returns a fresh copy of the built-in collection
func DefaultArticles() []models.Article {
	return []models.Article{
		{
			ID:       "1",
			Title:    "The Art of Minimalist Living in Modern Spaces",
			Excerpt:  "Discover how to create serene, functional environments that reflect your values while maintaining style and comfort.",
			Category: models.CategoryLifestyle,
			Author: models.Author{
				Name:   "Emma Chen",
				Avatar: "https://images.unsplash.com/photo-1494790108755-2616b612b47c?w=150&h=150&fit=crop&crop=face",
			},
			PublishDate: day("2024-01-15"),
			Tags:        []string{"Interior Design", "Wellness", "Sustainability"},
			Image:       "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=800&h=600&fit=crop",
			FullContent: "Minimalist living is more than just decluttering. It is about intentional choices that create space for what truly matters. In our modern world, where complexity often overwhelms, the principles of minimalism offer a path to clarity and peace.",
		},
		{
			ID:       "2",
			Title:    "Revolutionary AI Tools Reshaping Creative Workflows",
			Excerpt:  "Explore cutting-edge artificial intelligence applications that are transforming how designers and creators approach their craft.",
			Category: models.CategoryTech,
			Author: models.Author{
				Name:   "Marcus Rodriguez",
				Avatar: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
			},
			PublishDate: day("2024-01-12"),
			Tags:        []string{"AI", "Design Tools", "Innovation"},
			Image:       "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800&h=600&fit=crop",
			FullContent: "The landscape of creative work is evolving rapidly with AI integration. From generative design to automated workflows, these tools are not replacing human creativity but amplifying it in unprecedented ways.",
		},
		{
			ID:       "3",
			Title:    "Handcrafted Ceramics: Ancient Techniques, Modern Appeal",
			Excerpt:  "Meet the artisans reviving traditional pottery methods while creating contemporary pieces that speak to today's aesthetic.",
			Category: models.CategoryCraft,
			Author: models.Author{
				Name:   "Sarah Kim",
				Avatar: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=150&h=150&fit=crop&crop=face",
			},
			PublishDate: day("2024-01-10"),
			Tags:        []string{"Pottery", "Artisan", "Traditional Crafts"},
			Image:       "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=800&h=600&fit=crop",
			FullContent: "In an age of mass production, handcrafted ceramics represent a return to authenticity. These artisans are preserving ancient techniques while creating pieces that resonate with contemporary sensibilities.",
		},
		{
			ID:       "4",
			Title:    "Typography as Visual Language in Digital Spaces",
			Excerpt:  "Understanding how letterforms communicate beyond words and shape user experiences in the digital realm.",
			Category: models.CategoryDesign,
			Author: models.Author{
				Name:   "David Park",
				Avatar: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150&h=150&fit=crop&crop=face",
			},
			PublishDate: day("2024-01-08"),
			Tags:        []string{"Typography", "UX Design", "Visual Communication"},
			Image:       "https://images.unsplash.com/photo-1586717791821-3f44a563fa4c?w=800&h=600&fit=crop",
			FullContent: "Typography in digital design goes far beyond choosing pretty fonts. It is about creating hierarchy, establishing mood, and guiding users through information with clarity and purpose.",
		},
		{
			ID:       "5",
			Title:    "Sustainable Fashion: Beyond Fast Trends",
			Excerpt:  "How conscious consumers are driving a revolution in fashion that prioritizes longevity and environmental responsibility.",
			Category: models.CategoryLifestyle,
			Author: models.Author{
				Name:   "Lisa Wong",
				Avatar: "https://images.unsplash.com/photo-1544005313-94ddf0286df2?w=150&h=150&fit=crop&crop=face",
			},
			PublishDate: day("2024-01-05"),
			Tags:        []string{"Sustainability", "Fashion", "Ethics"},
			Image:       "https://images.unsplash.com/photo-1445205170230-053b83016050?w=800&h=600&fit=crop",
			FullContent: "The fashion industry is experiencing a fundamental shift as consumers demand transparency, quality, and environmental responsibility from brands.",
		},
		{
			ID:       "6",
			Title:    "The Future of Remote Collaboration Tools",
			Excerpt:  "Examining next-generation platforms that are making distributed teams more creative and productive than ever.",
			Category: models.CategoryTech,
			Author: models.Author{
				Name:   "Alex Thompson",
				Avatar: "https://images.unsplash.com/photo-1599566150163-29194dcaad36?w=150&h=150&fit=crop&crop=face",
			},
			PublishDate: day("2024-01-03"),
			Tags:        []string{"Remote Work", "Collaboration", "Productivity"},
			Image:       "https://images.unsplash.com/photo-1552664730-d307ca884978?w=800&h=600&fit=crop",
			FullContent: "Remote collaboration has evolved beyond video calls and shared documents. New platforms are creating immersive experiences that rival in-person interaction.",
		},
	}
}

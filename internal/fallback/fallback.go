// Package fallback supplies sample content for public reads when the live
// backend is unreachable.
//
// The provider is injectable so tests can substitute deterministic fixtures
// and deployments that prefer hard errors over silent degradation can
// disable it entirely.
package fallback

import (
	"time"

	"github.com/starford/ansuz/internal/models"
)

// Provider yields substitute content for failed public reads. A nil record
// from the lookup methods means the target is absent from the sample set.
type Provider interface {
	Posts() []models.Record
	PostBySlug(slug string) *models.Record
	PageBySlug(slug string) *models.Record
}

// Samples is a Provider backed by a fixed slice of posts and pages.
type Samples struct {
	posts []models.Record
	pages []models.Record
}

// NewSamples creates a provider over the given fixtures.
func NewSamples(posts, pages []models.Record) *Samples {
	return &Samples{posts: posts, pages: pages}
}

// Default returns the built-in sample set: three published posts and no
// pages, enough for the public reader to render something meaningful while
// the backend is down.
func Default() *Samples {
	return NewSamples(defaultPosts(), nil)
}

// Posts returns the sample posts.
func (s *Samples) Posts() []models.Record {
	out := make([]models.Record, len(s.posts))
	copy(out, s.posts)
	return out
}

// PostBySlug returns the sample post with the given slug, or nil.
func (s *Samples) PostBySlug(slug string) *models.Record {
	return bySlug(s.posts, slug)
}

// PageBySlug returns the sample page with the given slug, or nil.
func (s *Samples) PageBySlug(slug string) *models.Record {
	return bySlug(s.pages, slug)
}

func bySlug(records []models.Record, slug string) *models.Record {
	for i := range records {
		if records[i].Slug == slug {
			r := records[i]
			return &r
		}
	}
	return nil
}

// Disabled is a Provider with no content: every read falls through to nil
// or an empty list, restoring hard-error behavior at the call site.
type Disabled struct{}

// Posts implements Provider.
func (Disabled) Posts() []models.Record { return nil }

// PostBySlug implements Provider.
func (Disabled) PostBySlug(string) *models.Record { return nil }

// PageBySlug implements Provider.
func (Disabled) PageBySlug(string) *models.Record { return nil }

func defaultPosts() []models.Record {
	published := func(day int) *time.Time {
		t := time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return []models.Record{
		{
			ID:      "1",
			Slug:    "getting-started-with-headless-cms",
			Title:   "Getting Started with Headless CMS",
			Excerpt: "Learn how to build modern web applications with a headless CMS architecture.",
			Content: `# Getting Started with Headless CMS

A headless CMS separates the content management backend from the frontend
presentation layer.

## Benefits

- **Flexibility**: use any frontend framework or technology
- **Scalability**: distribute content across multiple platforms
- **Performance**: optimize each layer independently

## Getting Started

Start by choosing a headless CMS platform that fits your needs, create
content in a centralized system, and access it via REST or GraphQL APIs.`,
			AuthorID:    "sarah-johnson",
			Status:      models.StatusPublished,
			PublishedAt: published(15),
		},
		{
			ID:      "2",
			Slug:    "modern-web-development-trends",
			Title:   "Modern Web Development Trends 2025",
			Excerpt: "Explore the latest trends shaping web development in 2025.",
			Content: `# Modern Web Development Trends 2025

The web development landscape continues to evolve rapidly.

## 1. Edge Computing

Moving computation closer to users for better performance and lower latency.

## 2. AI Integration

AI-powered features are becoming standard, from content generation to
personalized experiences.

## 3. Web Components

Framework-agnostic components are gaining traction for better reusability.`,
			AuthorID:    "michael-chen",
			Status:      models.StatusPublished,
			PublishedAt: published(10),
		},
		{
			ID:      "3",
			Slug:    "building-scalable-apis",
			Title:   "Building Scalable REST APIs",
			Excerpt: "Best practices for designing and implementing scalable REST APIs.",
			Content: `# Building Scalable REST APIs

Creating APIs that can grow with your application requires careful planning.

## Key Principles

1. Design first: plan your API structure before writing code.
2. Versioning: always version your APIs for backward compatibility.
3. Rate limiting: protect your infrastructure with appropriate limits.
4. Caching: reduce load and improve response times.`,
			AuthorID:    "emily-rodriguez",
			Status:      models.StatusPublished,
			PublishedAt: published(5),
		},
	}
}

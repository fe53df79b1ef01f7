package blog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lowercase, runs of anything
// outside [a-z0-9] collapse to single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugUnsafe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// UniqueSlug returns the slug for title, suffixed with the current Unix
// timestamp when the plain slug is already taken.
func UniqueSlug(ctx context.Context, store Store, title string) (string, error) {
	slug := Slugify(title)
	taken, err := store.SlugExists(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !taken {
		return slug, nil
	}
	return fmt.Sprintf("%s-%d", slug, time.Now().Unix()), nil
}

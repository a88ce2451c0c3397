// Package slug turns display names into unique, URL-safe identifiers.
//
// Normalization keeps Arabic script and ASCII alphanumerics, which matches
// the storefront's bilingual catalog: "حذاء رجالي" stays Arabic while
// punctuation and other symbols are stripped.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	separatorRegexp = regexp.MustCompile(`[\s_]+`)
	allowedRegexp   = regexp.MustCompile("[^؀-ۿa-z0-9-]")
	repeatRegexp    = regexp.MustCompile(`-+`)
)

// ExistsFunc reports whether a slug candidate is already taken. The caller's
// implementation must exclude the entity's own id, so that re-saving an
// unchanged name does not collide with itself.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Normalize produces the base slug for a name: trimmed, lowercased,
// whitespace and underscores collapsed to single hyphens, characters outside
// the Arabic script and ASCII alphanumerics stripped, repeated hyphens
// collapsed, leading/trailing hyphens removed. If everything is stripped
// away, the original name is returned unchanged so the entity still gets a
// non-empty slug.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = separatorRegexp.ReplaceAllString(s, "-")
	s = allowedRegexp.ReplaceAllString(s, "")
	s = repeatRegexp.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return name
	}
	return s
}

// Make resolves a unique slug for name. It normalizes the name and then
// probes exists sequentially with "base", "base-1", "base-2", … until a free
// candidate is found. Probing is deliberately sequential: each exists call
// completes before the next candidate is tried, keeping the uniqueness check
// race-free against the same resolver.
func Make(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Normalize(name)
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

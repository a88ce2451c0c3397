package domain

import (
	"time"
)

// PropertyDefinition is a named attribute with its permissible values,
// for example {Name: "color", Values: ["red", "blue"]}. Definitions are
// declared on categories and inherited down the category tree.
type PropertyDefinition struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Category is a node in the category tree. Parent is a weak reference by id;
// the tree shape is never materialized as live pointers, traversal goes
// through an id lookup with a visited-set guard.
type Category struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Slug       string               `json:"slug"`
	ParentID   *string              `json:"parent_id,omitempty"`
	Properties []PropertyDefinition `json:"properties"`
	Tags       []string             `json:"tags"`
	Image      *string              `json:"image,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// CategoryLookup resolves a category by id, returning nil when absent.
type CategoryLookup func(id string) *Category

// LookupIn builds a CategoryLookup over an in-memory category slice.
func LookupIn(categories []Category) CategoryLookup {
	byID := make(map[string]*Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	return func(id string) *Category { return byID[id] }
}

// ResolveProperties walks from categoryID upward through parent references
// and collects every visited category's property definitions in walk order:
// the selected category's own definitions first, then each ancestor's.
// Definitions are appended as encountered; the same property name declared
// at two levels yields two entries. A parent chain that loops back to a
// visited id silently terminates the walk — bad data degrades to a shorter
// schema rather than an infinite loop.
func ResolveProperties(categoryID string, lookup CategoryLookup) []PropertyDefinition {
	var defs []PropertyDefinition
	visited := make(map[string]bool)

	for cat := lookup(categoryID); cat != nil && !visited[cat.ID]; {
		visited[cat.ID] = true
		defs = append(defs, cat.Properties...)
		if cat.ParentID == nil {
			break
		}
		cat = lookup(*cat.ParentID)
	}
	return defs
}

// ResolveTags returns the category's own tag vocabulary, deduplicated and in
// declaration order. Ancestors are deliberately not consulted: tags are a
// per-category vocabulary in the admin UI, unlike properties which inherit.
// See ResolveTagsInherited for the ancestor-walking variant.
func ResolveTags(categoryID string, lookup CategoryLookup) []string {
	cat := lookup(categoryID)
	if cat == nil {
		return nil
	}
	return dedupeTags(cat.Tags)
}

// ResolveTagsInherited unions the tag vocabulary of the category and all its
// ancestors, using the same visited-set cycle guard as ResolveProperties.
func ResolveTagsInherited(categoryID string, lookup CategoryLookup) []string {
	var tags []string
	visited := make(map[string]bool)

	for cat := lookup(categoryID); cat != nil && !visited[cat.ID]; {
		visited[cat.ID] = true
		tags = append(tags, cat.Tags...)
		if cat.ParentID == nil {
			break
		}
		cat = lookup(*cat.ParentID)
	}
	return dedupeTags(tags)
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

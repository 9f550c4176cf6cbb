package domain

import "strings"

// Category is a node in the storefront's category forest. Categories are
// owned by the backend; this service only reads and caches them.
type Category struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	// ParentIDs is the ordered ancestor chain, root first. Root categories
	// carry an empty chain.
	ParentIDs []string `json:"parent_category_id,omitempty"`
	// ChildIDs is denormalized from the inverse of ParentIDs and must stay
	// consistent with it.
	ChildIDs []string `json:"child_categories,omitempty"`
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return len(c.ParentIDs) == 0
}

// ParentID returns the direct parent id, or "" for root categories.
func (c Category) ParentID() string {
	if len(c.ParentIDs) == 0 {
		return ""
	}
	return c.ParentIDs[len(c.ParentIDs)-1]
}

// NormalizeSlug canonicalizes user-supplied slug input for lookups.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Package catalog turns the flat category list into a navigable tree:
// ancestor chains for breadcrumbs and descendant sets for subtree queries.
package catalog

import (
	"fmt"

	"storefront-gateway/internal/domain"
)

// Tree is a validated rooted forest of categories. Build rejects orphaned
// references and cycles up front so traversals cannot loop.
type Tree struct {
	nodes    map[string]domain.Category
	children map[string][]string
}

// Build constructs a Tree from the flat backend list. It returns an error
// when a parent or child reference points at a category that does not
// exist, when the denormalized child list disagrees with parent chains, or
// when parent pointers form a cycle.
func Build(cats []domain.Category) (*Tree, error) {
	t := &Tree{
		nodes:    make(map[string]domain.Category, len(cats)),
		children: make(map[string][]string, len(cats)),
	}
	for _, c := range cats {
		if _, dup := t.nodes[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		t.nodes[c.ID] = c
	}

	for _, c := range cats {
		if p := c.ParentID(); p != "" {
			if _, ok := t.nodes[p]; !ok {
				return nil, fmt.Errorf("category %q references missing parent %q", c.ID, p)
			}
			t.children[p] = append(t.children[p], c.ID)
		}
		for _, childID := range c.ChildIDs {
			child, ok := t.nodes[childID]
			if !ok {
				return nil, fmt.Errorf("category %q lists missing child %q", c.ID, childID)
			}
			if child.ParentID() != c.ID {
				return nil, fmt.Errorf("category %q lists child %q whose parent chain does not include it", c.ID, childID)
			}
		}
	}

	for _, c := range cats {
		if err := t.checkAcyclic(c.ID); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) checkAcyclic(id string) error {
	seen := make(map[string]bool)
	for cur := id; cur != ""; {
		if seen[cur] {
			return fmt.Errorf("parent cycle through category %q", cur)
		}
		seen[cur] = true
		cur = t.nodes[cur].ParentID()
	}
	return nil
}

// Category returns the node for id.
func (t *Tree) Category(id string) (domain.Category, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// Ancestors returns the chain from root to the given category, inclusive.
// Even though Build rejects cycles, the walk keeps a visited set and
// truncates at the repeated node so corrupted data degrades instead of
// hanging.
func (t *Tree) Ancestors(id string) ([]domain.Category, error) {
	c, ok := t.nodes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	chain := []domain.Category{c}
	seen := map[string]bool{id: true}
	for p := c.ParentID(); p != ""; {
		parent, ok := t.nodes[p]
		if !ok || seen[p] {
			break
		}
		seen[p] = true
		chain = append(chain, parent)
		p = parent.ParentID()
	}

	// reverse to root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Descendants returns the ids of every category under id, not including id
// itself. Used for subtree-wide listing queries.
func (t *Tree) Descendants(id string) []string {
	var out []string
	stack := append([]string(nil), t.children[id]...)
	seen := make(map[string]bool)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		stack = append(stack, t.children[cur]...)
	}
	return out
}

// Crumb is one breadcrumb entry: display name plus storefront href.
type Crumb struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// SchemaItem is one BreadcrumbList element for structured data, positions
// starting at 1 with the Home entry.
type SchemaItem struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

// Breadcrumb returns the navigation trail for id: exactly one Home entry
// followed by the root-to-category chain. A root category therefore yields
// [Home, Category].
func (t *Tree) Breadcrumb(id string) ([]Crumb, error) {
	chain, err := t.Ancestors(id)
	if err != nil {
		return nil, err
	}
	crumbs := make([]Crumb, 0, len(chain)+1)
	crumbs = append(crumbs, Crumb{Name: "Home", Href: "/"})
	for _, c := range chain {
		crumbs = append(crumbs, Crumb{Name: c.Name, Href: "/category/" + c.Slug})
	}
	return crumbs, nil
}

// BreadcrumbSchema maps a crumb trail onto position/name/URL triples for
// search-engine structured data.
func BreadcrumbSchema(crumbs []Crumb, baseURL string) []SchemaItem {
	items := make([]SchemaItem, len(crumbs))
	for i, c := range crumbs {
		items[i] = SchemaItem{
			Position: i + 1,
			Name:     c.Name,
			Item:     baseURL + c.Href,
		}
	}
	return items
}

package store

import (
	"github.com/google/uuid"

	"medipro-api/internal/domain"
)

// BuildCategoryTree assembles the hierarchical category view from flat
// rows. Input rows must already be ordered (display_order, then name);
// that order is preserved at every level. Only rows with a nil parent
// become roots, so a row whose parent is missing from the input (an
// inactive or deleted parent) is unreachable and its subtree stays out
// of the tree.
func BuildCategoryTree(categories []domain.Category) []domain.CategoryTreeNode {
	children := make(map[uuid.UUID][]*domain.Category)
	var roots []*domain.Category
	for i := range categories {
		c := &categories[i]
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var build func(c *domain.Category) domain.CategoryTreeNode
	build = func(c *domain.Category) domain.CategoryTreeNode {
		node := domain.CategoryTreeNode{
			ID:            c.ID,
			Name:          c.Name,
			Slug:          c.Slug,
			Icon:          c.Icon,
			Image:         c.Image,
			Color:         c.Color,
			ProductCount:  c.ProductCount,
			Subcategories: []domain.CategoryTreeNode{},
		}
		for _, child := range children[c.ID] {
			node.Subcategories = append(node.Subcategories, build(child))
		}
		return node
	}

	tree := make([]domain.CategoryTreeNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree
}

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medipro-api/internal/domain"
)

func TestBuildCategoryTree(t *testing.T) {
	rootA := uuid.New()
	rootB := uuid.New()
	childA1 := uuid.New()
	childA2 := uuid.New()
	grandchild := uuid.New()

	// Input is pre-sorted by (display_order, name), as the store
	// queries return it.
	flat := []domain.Category{
		{ID: rootA, Name: "Diagnostics", Slug: "diagnostics", ProductCount: 5},
		{ID: rootB, Name: "Mobility", Slug: "mobility"},
		{ID: childA1, Name: "Monitors", Slug: "monitors", ParentID: &rootA, ProductCount: 3},
		{ID: childA2, Name: "Thermometers", Slug: "thermometers", ParentID: &rootA},
		{ID: grandchild, Name: "Blood Pressure", Slug: "blood-pressure", ParentID: &childA1},
	}

	tree := BuildCategoryTree(flat)

	require.Len(t, tree, 2)
	assert.Equal(t, "diagnostics", tree[0].Slug)
	assert.Equal(t, "mobility", tree[1].Slug)

	require.Len(t, tree[0].Subcategories, 2)
	assert.Equal(t, "monitors", tree[0].Subcategories[0].Slug)
	assert.Equal(t, "thermometers", tree[0].Subcategories[1].Slug)

	require.Len(t, tree[0].Subcategories[0].Subcategories, 1)
	assert.Equal(t, "blood-pressure", tree[0].Subcategories[0].Subcategories[0].Slug)

	assert.Empty(t, tree[1].Subcategories)
	assert.NotNil(t, tree[1].Subcategories, "leaf nodes should serialize as [] not null")
}

func TestBuildCategoryTree_InactiveParentPrunesSubtree(t *testing.T) {
	root := uuid.New()
	inactiveParent := uuid.New()
	child := uuid.New()
	grandchild := uuid.New()

	// The inactive parent is filtered out before the build, so its
	// active descendants must not resurface at the top level.
	tree := BuildCategoryTree([]domain.Category{
		{ID: root, Name: "Diagnostics", Slug: "diagnostics"},
		{ID: child, Name: "Monitors", Slug: "monitors", ParentID: &inactiveParent},
		{ID: grandchild, Name: "Blood Pressure", Slug: "blood-pressure", ParentID: &child},
	})

	require.Len(t, tree, 1)
	assert.Equal(t, "diagnostics", tree[0].Slug)
	assert.Empty(t, tree[0].Subcategories)
}

func TestBuildCategoryTree_Empty(t *testing.T) {
	tree := BuildCategoryTree(nil)
	assert.Empty(t, tree)
	assert.NotNil(t, tree)
}

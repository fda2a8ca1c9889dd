package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 25, 1, 10)

	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
}

func TestNewPage_ExactMultiple(t *testing.T) {
	page := NewPage([]string{}, 20, 2, 10)
	assert.Equal(t, 2, page.TotalPages)
}

func TestNewPage_Empty(t *testing.T) {
	page := NewPage[int](nil, 0, 1, 10)

	assert.Equal(t, 0, page.TotalPages)
	assert.NotNil(t, page.Items, "items should serialize as [] not null")
	assert.Empty(t, page.Items)
}

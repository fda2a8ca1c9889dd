package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medipro-api/internal/domain"
)

var categoryRowColumns = []string{
	"id", "name", "slug", "description", "parent_id", "icon", "image", "color",
	"display_order", "is_active", "is_featured", "created_at", "updated_at", "product_count",
}

func TestPostgresStore_CreateCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	categoryID := uuid.New()
	categoryToCreate := &domain.Category{
		ID:       categoryID,
		Name:     "Diagnostics",
		Slug:     "diagnostics",
		IsActive: true,
	}

	rows := sqlmock.NewRows(categoryRowColumns).
		AddRow(categoryID, "Diagnostics", "diagnostics", nil, nil, nil, nil, nil, 0, true, false, now, now, 0)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
		WithArgs(categoryID, "Diagnostics", "diagnostics", nil, nil, nil, nil, nil, 0, true, false).
		WillReturnRows(rows)

	created, err := store.CreateCategory(context.Background(), categoryToCreate)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, categoryID, created.ID)
	assert.Equal(t, "diagnostics", created.Slug)
	assert.Zero(t, created.ProductCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateCategory_SlugExists(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	pqErr := &pq.Error{Code: "23505", Constraint: "categories_slug_key"}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
		WillReturnError(pqErr)

	created, err := store.CreateCategory(context.Background(), &domain.Category{
		ID:   uuid.New(),
		Name: "Dup",
		Slug: "dup",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSlugExists))
	assert.Nil(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateCategory_ParentMissing(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	parentID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)")).
		WithArgs(parentID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	created, err := store.CreateCategory(context.Background(), &domain.Category{
		Name:     "Child",
		Slug:     "child",
		ParentID: &parentID,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParentNotFound))
	assert.Nil(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateCategory_SelfParent(t *testing.T) {
	db, _, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	updated, err := store.UpdateCategory(context.Background(), &domain.Category{
		ID:       id,
		Name:     "Loop",
		Slug:     "loop",
		ParentID: &id,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSelfParent))
	assert.Nil(t, updated)
}

func TestPostgresStore_DeleteCategory_Blocked(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").
		WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"product_count", "child_count"}).AddRow(3, 0))
	mock.ExpectRollback()

	err := store.DeleteCategory(context.Background(), categoryID, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCategoryInUse))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteCategory_Force(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	categoryID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").
		WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"product_count", "child_count"}).AddRow(3, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET category_id = NULL WHERE category_id = $1")).
		WithArgs(categoryID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET parent_id = NULL WHERE parent_id = $1")).
		WithArgs(categoryID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs(categoryID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.DeleteCategory(context.Background(), categoryID, true)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReorderCategories_SkipsUnknown(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	knownID := uuid.New()
	unknownID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET display_order = $1")).
		WithArgs(1, knownID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET display_order = $1")).
		WithArgs(2, unknownID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	updated, err := store.ReorderCategories(context.Background(), []CategoryOrder{
		{ID: knownID, DisplayOrder: 1},
		{ID: unknownID, DisplayOrder: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartItemJoinedRow(itemID, userID, productID uuid.UUID, quantity int, price float64, stock int, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "product_id", "quantity", "created_at", "updated_at",
		"p_id", "name", "description", "short_description", "price", "original_price",
		"category_id", "category", "subcategory", "stock_quantity", "sku", "slug",
		"images", "thumbnail", "specifications", "features",
		"is_active", "is_featured", "p_created_at", "p_updated_at",
	}).AddRow(
		itemID, userID, productID, quantity, now, now,
		productID, "Thermometer", "Clinical thermometer", nil, price, nil,
		nil, "diagnostics", nil, stock, nil, nil,
		nil, nil, nil, nil,
		true, false, now, now,
	)
}

func TestPostgresStore_AddCartItem_NewLine(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now()
	userID := uuid.New()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT stock_quantity, is_active FROM products")).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "is_active"}).AddRow(5, true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, quantity FROM cart_items")).
		WithArgs(userID, productID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cart_items")).
		WithArgs(sqlmock.AnyArg(), userID, productID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("FROM cart_items ci").
		WillReturnRows(cartItemJoinedRow(uuid.New(), userID, productID, 2, 1200.0, 5, now))

	item, err := store.AddCartItem(context.Background(), userID, productID, 2)

	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 2, item.Quantity)
	require.NotNil(t, item.Product)
	assert.Equal(t, 2400.0, item.Subtotal())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddCartItem_MergeExceedsStock(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	userID := uuid.New()
	productID := uuid.New()
	existingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT stock_quantity, is_active FROM products")).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "is_active"}).AddRow(5, true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, quantity FROM cart_items")).
		WithArgs(userID, productID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow(existingID, 4))
	mock.ExpectRollback()

	item, err := store.AddCartItem(context.Background(), userID, productID, 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Nil(t, item)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddCartItem_InactiveProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	userID := uuid.New()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT stock_quantity, is_active FROM products")).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "is_active"}).AddRow(5, false))
	mock.ExpectRollback()

	item, err := store.AddCartItem(context.Background(), userID, productID, 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductInactive))
	assert.Nil(t, item)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RemoveCartItem_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	itemID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE id = $1 AND user_id = $2")).
		WithArgs(itemID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.RemoveCartItem(context.Background(), itemID, userID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCartItemNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ClearCart_Idempotent(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	userID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.ClearCart(context.Background(), userID))
	require.NoError(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"medipro-api/internal/domain"
)

const userColumns = "id, email, full_name, phone, is_active, is_verified, is_admin, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }, u *domain.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone,
		&u.IsActive, &u.IsVerified, &u.IsAdmin,
		&u.CreatedAt, &u.UpdatedAt,
	)
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, full_name, phone, is_active, is_verified, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.FullName, user.Phone,
		user.IsActive, user.IsVerified, user.IsAdmin,
	)

	var created domain.User
	if err := scanUser(row, &created); err != nil {
		if isUniqueViolation(err, "email") {
			return nil, ErrUserEmailExists
		}
		return nil, fmt.Errorf("store: CreateUser failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	var user domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, id), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: GetUserByID failed to scan row: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	var user domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, email), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: GetUserByEmail failed to scan row: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET full_name = $1, phone = $2, is_active = $3, is_verified = $4, is_admin = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING ` + userColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		user.FullName, user.Phone, user.IsActive, user.IsVerified, user.IsAdmin, user.ID,
	)

	var updated domain.User
	if err := scanUser(row, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: UpdateUser failed to scan row: %w", err)
	}
	return &updated, nil
}

// DeactivateUser soft-deletes a user; profile rows are never removed
// through the normal flow.
func (s *PostgresStore) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeactivateUser failed to execute update: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeactivateUser failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*domain.User, error) {
	query := `
		UPDATE users
		SET is_admin = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + userColumns + `;
	`
	var updated domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, isAdmin, id), &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: SetAdmin failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, params ListUsersParams) ([]domain.User, int, error) {
	var queryArgs []interface{}
	var whereClauses []string
	argID := 1

	if params.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_active = $%d", argID))
		queryArgs = append(queryArgs, *params.IsActive)
		argID++
	}
	if params.IsAdmin != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_admin = $%d", argID))
		queryArgs = append(queryArgs, *params.IsAdmin)
		argID++
	}
	if params.SearchQuery != nil && *params.SearchQuery != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(email ILIKE $%d OR full_name ILIKE $%d)", argID, argID+1))
		searchTerm := "%" + *params.SearchQuery + "%"
		queryArgs = append(queryArgs, searchTerm, searchTerm)
		argID += 2
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM users" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListUsers failed to count users: %w", err)
	}
	if totalCount == 0 {
		return []domain.User{}, 0, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, whereCondition, argID, argID+1)
	finalArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListUsers failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, params.Limit)
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("store: ListUsers failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListUsers iteration error: %w", err)
	}
	return users, totalCount, nil
}

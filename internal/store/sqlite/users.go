package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

const userColumns = `id, username, email`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	if err := scanner.Scan(&u.ID, &u.Username, &u.Email); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. The HTTP API never calls this; the seeder and
// tests do. A username or email collision surfaces as ErrDuplicateKey.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email) VALUES (?, ?)`, u.Username, u.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateKeyf("user %q already exists", u.Username)
		}
		return apperrors.Storage(fmt.Errorf("insert user: %w", err))
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("user id: %w", err))
	}
	return nil
}

// GetUser retrieves a user by id. Returns ErrWrongID if absent.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.WrongIDf("user", id)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query user: %w", err))
	}
	return u, nil
}

// ListUsers returns a page of users ordered by id.
func (s *Store) ListUsers(ctx context.Context, page query.Page) ([]*domain.User, error) {
	page.Normalize()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query users: %w", err))
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scan user: %w", err))
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("iterate users: %w", err))
	}
	return users, nil
}

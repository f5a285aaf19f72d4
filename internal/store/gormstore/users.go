package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

// CreateUser inserts a user. The HTTP API never calls this; the seeder and
// tests do.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	m := userModel{Username: u.Username, Email: u.Email}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateKeyf("user %q already exists", u.Username)
		}
		return apperrors.Storage(fmt.Errorf("insert user: %w", err))
	}
	u.ID = m.ID
	return nil
}

// GetUser retrieves a user by id. Returns ErrWrongID if absent.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	err := s.db.WithContext(ctx).First(&m, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.WrongIDf("user", id)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query user: %w", err))
	}
	return m.toDomain(), nil
}

// ListUsers returns a page of users ordered by id.
func (s *Store) ListUsers(ctx context.Context, page query.Page) ([]*domain.User, error) {
	page.Normalize()

	var models []userModel
	err := s.db.WithContext(ctx).
		Order("id").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query users: %w", err))
	}

	users := make([]*domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

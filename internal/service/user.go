package service

import (
	"context"
	"log/slog"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
)

// UserService exposes read-only access to users. Accounts are provisioned
// out of band (the seeder); the API never creates or modifies them.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, page, size int) ([]*domain.User, error) {
	return s.store.ListUsers(ctx, query.Page{Number: page, Size: size})
}

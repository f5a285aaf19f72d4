package service

import (
	"context"
	"log/slog"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
	"github.com/Vyacheslaf/giftcert-server/internal/validation"
)

// TagService orchestrates tag operations. Tags are global, unique by name,
// and shared across certificates.
type TagService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateTagRequest contains fields for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// Create creates a new tag.
func (s *TagService) Create(ctx context.Context, req CreateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	t := &domain.Tag{Name: req.Name}
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "id", t.ID, "name", t.Name)
	return t, nil
}

// Get returns a tag by id.
func (s *TagService) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	return s.store.GetTag(ctx, id)
}

// List returns a page of tags.
func (s *TagService) List(ctx context.Context, page, size int) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, query.Page{Number: page, Size: size})
}

// Update is intentionally unsupported: tags are immutable once created.
// Renaming a tag would silently retag every associated certificate.
func (s *TagService) Update(_ context.Context, _ int64) error {
	return errors.Unsupported("tag update")
}

// Delete removes a tag and detaches it from all certificates.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tag deleted", "id", id)
	return nil
}

// CertificateTags returns the tags attached to a certificate.
func (s *TagService) CertificateTags(ctx context.Context, certificateID int64) ([]*domain.Tag, error) {
	return s.store.GetCertificateTags(ctx, certificateID)
}

// MostUsedForUser returns the most used tag, by summed order cost, among the
// certificates the user ordered.
func (s *TagService) MostUsedForUser(ctx context.Context, userID int64) (*domain.Tag, error) {
	return s.store.MostUsedTagForUser(ctx, userID)
}

// Package service orchestrates domain operations between the API layer and
// the store. Services validate requests, translate them into store calls,
// and log mutations; all persistence semantics live in the store.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
	"github.com/Vyacheslaf/giftcert-server/internal/validation"
)

// CertificateService orchestrates gift certificate operations.
type CertificateService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewCertificateService creates a new certificate service.
func NewCertificateService(store store.Store, logger *slog.Logger) *CertificateService {
	return &CertificateService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateCertificateRequest contains fields for creating a certificate.
type CreateCertificateRequest struct {
	Name           string     `json:"name" validate:"required,min=1,max=255"`
	Description    string     `json:"description" validate:"required"`
	Price          int64      `json:"price" validate:"gte=0"`
	Duration       int64      `json:"duration" validate:"gt=0"`
	Tags           []string   `json:"tags" validate:"dive,min=1"`
	CreateDate     *time.Time `json:"create_date,omitempty"`
	LastUpdateDate *time.Time `json:"last_update_date,omitempty"`
}

// Create creates a gift certificate with its tags.
func (s *CertificateService) Create(ctx context.Context, req CreateCertificateRequest) (*domain.Certificate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c := &domain.Certificate{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Duration:       req.Duration,
		CreateDate:     req.CreateDate,
		LastUpdateDate: req.LastUpdateDate,
		Tags:           tagsFromNames(req.Tags),
	}
	if err := s.store.CreateCertificate(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("certificate created", "id", c.ID, "name", c.Name, "tags", len(c.Tags))
	return c, nil
}

// Get returns a certificate by id.
func (s *CertificateService) Get(ctx context.Context, id int64) (*domain.Certificate, error) {
	return s.store.GetCertificate(ctx, id)
}

// FindCertificatesRequest carries the dynamic query parameters.
type FindCertificatesRequest struct {
	Tags   []string
	Search string
	Sort   []string
	Page   int
	Size   int
}

// Find runs the dynamic certificate query.
func (s *CertificateService) Find(ctx context.Context, req FindCertificatesRequest) ([]*domain.Certificate, error) {
	return s.store.FindCertificates(ctx, query.Params{
		TagNames:   req.Tags,
		Search:     req.Search,
		SortTokens: req.Sort,
		Page:       query.Page{Number: req.Page, Size: req.Size},
	})
}

// UpdateCertificateRequest contains the partial update for a certificate.
// Nil fields stay unchanged; a non-nil tag list replaces all associations.
type UpdateCertificateRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Price       *int64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	Duration    *int64   `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
}

// Update applies a partial update to a certificate.
func (s *CertificateService) Update(ctx context.Context, id int64, req UpdateCertificateRequest) (*domain.Certificate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	patch := domain.CertificatePatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
		Tags:        tagsFromNames(req.Tags),
	}
	if patch.IsZero() {
		return nil, errors.Validation("update requires at least one field")
	}

	c, err := s.store.UpdateCertificate(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("certificate updated", "id", id)
	return c, nil
}

// UpdateDurationRequest contains the narrow duration update.
type UpdateDurationRequest struct {
	Duration int64 `json:"duration" validate:"gt=0"`
}

// UpdateDuration changes only the certificate's validity duration.
func (s *CertificateService) UpdateDuration(ctx context.Context, id int64, req UpdateDurationRequest) (*domain.Certificate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c, err := s.store.UpdateCertificateDuration(ctx, id, req.Duration)
	if err != nil {
		return nil, err
	}

	s.logger.Info("certificate duration updated", "id", id, "duration", req.Duration)
	return c, nil
}

// Delete removes a certificate. Its tags survive.
func (s *CertificateService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCertificate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("certificate deleted", "id", id)
	return nil
}

func tagsFromNames(names []string) []domain.Tag {
	if names == nil {
		return nil
	}
	tags := make([]domain.Tag, len(names))
	for i, n := range names {
		tags[i] = domain.Tag{Name: n}
	}
	return tags
}

package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
	"github.com/Vyacheslaf/giftcert-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustSeedUser(t *testing.T, s store.Store) *domain.User {
	t.Helper()
	u := &domain.User{Username: "buyer", Email: "buyer@example.com"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestCertificateService_Create(t *testing.T) {
	s := newTestStore(t)
	svc := NewCertificateService(s, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCertificateRequest{
		Name:        "spa day",
		Description: "full body massage",
		Price:       5000,
		Duration:    30,
		Tags:        []string{"wellness"},
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Len(t, c.Tags, 1)
	assert.NotNil(t, c.CreateDate)
}

func TestCertificateService_CreateValidation(t *testing.T) {
	s := newTestStore(t)
	svc := NewCertificateService(s, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateCertificateRequest
	}{
		{"missing name", CreateCertificateRequest{Description: "d", Price: 1, Duration: 1}},
		{"missing description", CreateCertificateRequest{Name: "n", Price: 1, Duration: 1}},
		{"negative price", CreateCertificateRequest{Name: "n", Description: "d", Price: -1, Duration: 1}},
		{"zero duration", CreateCertificateRequest{Name: "n", Description: "d", Price: 1, Duration: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation), "got %v", err)
		})
	}
}

func TestCertificateService_UpdateEmptyPatch(t *testing.T) {
	s := newTestStore(t)
	svc := NewCertificateService(s, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCertificateRequest{
		Name: "target", Description: "d", Price: 1, Duration: 1,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, UpdateCertificateRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation), "got %v", err)
}

func TestCertificateService_UpdateDuration(t *testing.T) {
	s := newTestStore(t)
	svc := NewCertificateService(s, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCertificateRequest{
		Name: "short", Description: "d", Price: 1, Duration: 5,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateDuration(ctx, c.ID, UpdateDurationRequest{Duration: 90})
	require.NoError(t, err)
	assert.EqualValues(t, 90, updated.Duration)

	_, err = svc.UpdateDuration(ctx, c.ID, UpdateDurationRequest{Duration: 0})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation), "got %v", err)
}

func TestCertificateService_FindPassesThroughQueryErrors(t *testing.T) {
	s := newTestStore(t)
	svc := NewCertificateService(s, slog.New(slog.DiscardHandler))

	_, err := svc.Find(context.Background(), FindCertificatesRequest{
		Sort: []string{"price.asc"},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSortToken), "got %v", err)
}

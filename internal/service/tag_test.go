package service

import (
	"context"
	"log/slog"
	"testing"

	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_CreateAndDuplicate(t *testing.T) {
	s := newTestStore(t)
	svc := NewTagService(s, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	tag, err := svc.Create(ctx, CreateTagRequest{Name: "wellness"})
	require.NoError(t, err)
	assert.NotZero(t, tag.ID)

	_, err = svc.Create(ctx, CreateTagRequest{Name: "wellness"})
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateKey), "got %v", err)

	_, err = svc.Create(ctx, CreateTagRequest{Name: ""})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation), "got %v", err)
}

func TestTagService_UpdateUnsupported(t *testing.T) {
	s := newTestStore(t)
	svc := NewTagService(s, slog.New(slog.DiscardHandler))

	err := svc.Update(context.Background(), 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnsupported), "got %v", err)
}

func TestOrderService_CreateAndMostUsed(t *testing.T) {
	s := newTestStore(t)
	logger := slog.New(slog.DiscardHandler)
	certs := NewCertificateService(s, logger)
	orders := NewOrderService(s, logger)
	tags := NewTagService(s, logger)
	ctx := context.Background()

	u := mustSeedUser(t, s)
	c, err := certs.Create(ctx, CreateCertificateRequest{
		Name: "orderable", Description: "d", Price: 2500, Duration: 30,
		Tags: []string{"favorite"},
	})
	require.NoError(t, err)

	o, err := orders.Create(ctx, u.ID, CreateOrderRequest{CertificateID: c.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2500, o.Cost)

	got, err := orders.GetForUser(ctx, u.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	top, err := tags.MostUsedForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "favorite", top.Name)

	_, err = orders.Create(ctx, u.ID, CreateOrderRequest{CertificateID: 0})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation), "got %v", err)
}

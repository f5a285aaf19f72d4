package service

import (
	"context"
	"log/slog"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
	"github.com/Vyacheslaf/giftcert-server/internal/validation"
)

// OrderService orchestrates order placement and user-scoped order reads.
type OrderService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewOrderService creates a new order service.
func NewOrderService(store store.Store, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateOrderRequest contains fields for placing an order.
type CreateOrderRequest struct {
	CertificateID int64 `json:"gift_certificate_id" validate:"required,gt=0"`
}

// Create places an order for a user. The store snapshots the certificate's
// current price and stamps the purchase date.
func (s *OrderService) Create(ctx context.Context, userID int64, req CreateOrderRequest) (*domain.Order, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	o := &domain.Order{UserID: userID, CertificateID: req.CertificateID}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order created", "id", o.ID, "user_id", o.UserID,
		"gift_certificate_id", o.CertificateID, "cost", o.Cost)
	return o, nil
}

// GetForUser returns one of the user's orders.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	return s.store.GetUserOrder(ctx, userID, orderID)
}

// ListForUser returns a page of the user's orders.
func (s *OrderService) ListForUser(ctx context.Context, userID int64, page, size int) ([]*domain.Order, error) {
	return s.store.ListUserOrders(ctx, userID, query.Page{Number: page, Size: size})
}

package gormstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

// CreateOrder places an order in one transaction: it verifies the user and
// certificate exist, snapshots the certificate's current price into Cost,
// and stamps PurchaseDate.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u userModel
		err := tx.Select("id").First(&u, o.UserID).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.WrongOrderFields(o.UserID, o.CertificateID)
		}
		if err != nil {
			return apperrors.Storage(fmt.Errorf("check user: %w", err))
		}

		var c certificateModel
		err = tx.Select("id", "price").First(&c, o.CertificateID).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.WrongOrderFields(o.UserID, o.CertificateID)
		}
		if err != nil {
			return apperrors.Storage(fmt.Errorf("check certificate: %w", err))
		}

		o.Cost = c.Price
		o.PurchaseDate = time.Now().UTC()

		m := orderModel{
			UserID:            o.UserID,
			GiftCertificateID: o.CertificateID,
			Cost:              o.Cost,
			PurchaseDate:      formatTime(o.PurchaseDate),
		}
		if err := tx.Create(&m).Error; err != nil {
			return apperrors.Storage(fmt.Errorf("insert order: %w", err))
		}
		o.ID = m.ID
		return nil
	})
}

// GetUserOrder retrieves one order scoped to its owner. A missing order and
// another user's order both yield ErrWrongOrderIDForUser.
func (s *Store) GetUserOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	var m orderModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.WrongOrderIDForUser(orderID, userID)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query order: %w", err))
	}
	return m.toDomain()
}

// ListUserOrders returns a page of the user's orders ordered by id.
// Returns ErrWrongID when the user does not exist.
func (s *Store) ListUserOrders(ctx context.Context, userID int64, page query.Page) ([]*domain.Order, error) {
	page.Normalize()

	var models []orderModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u userModel
		err := tx.Select("id").First(&u, userID).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.WrongIDf("user", userID)
		}
		if err != nil {
			return apperrors.Storage(fmt.Errorf("check user: %w", err))
		}

		err = tx.Where("user_id = ?", userID).
			Order("id").
			Limit(page.Size).
			Offset(page.Offset()).
			Find(&models).Error
		if err != nil {
			return apperrors.Storage(fmt.Errorf("query orders: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(models))
	for _, m := range models {
		o, err := m.toDomain()
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("decode order: %w", err))
		}
		orders = append(orders, o)
	}
	return orders, nil
}

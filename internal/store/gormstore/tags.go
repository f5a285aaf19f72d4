package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

// CreateTag inserts a tag. A name collision surfaces as ErrDuplicateKey.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if t.Name == "" {
		return apperrors.InvalidTagName()
	}

	m := tagModel{Name: t.Name}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateKeyf("tag %q already exists", t.Name)
		}
		return apperrors.Storage(fmt.Errorf("insert tag: %w", err))
	}
	t.ID = m.ID
	return nil
}

// GetTag retrieves a tag by id. Returns ErrWrongID if absent.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	var m tagModel
	err := s.db.WithContext(ctx).First(&m, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.WrongIDf("tag", id)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query tag: %w", err))
	}
	return m.toDomain(), nil
}

// ListTags returns a page of tags ordered by id.
func (s *Store) ListTags(ctx context.Context, page query.Page) ([]*domain.Tag, error) {
	page.Normalize()

	var models []tagModel
	err := s.db.WithContext(ctx).
		Order("id").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query tags: %w", err))
	}

	tags := make([]*domain.Tag, 0, len(models))
	for _, m := range models {
		tags = append(tags, m.toDomain())
	}
	return tags, nil
}

// DeleteTag removes a tag and its certificate associations in one
// transaction.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&certificateTagModel{}).Error; err != nil {
			return apperrors.Storage(fmt.Errorf("delete tag associations: %w", err))
		}
		res := tx.Delete(&tagModel{}, id)
		if res.Error != nil {
			return apperrors.Storage(fmt.Errorf("delete tag: %w", res.Error))
		}
		if res.RowsAffected == 0 {
			return apperrors.WrongIDf("tag", id)
		}
		return nil
	})
}

// GetCertificateTags returns the tags attached to a certificate in
// attachment order. Returns ErrWrongID when the certificate is absent.
func (s *Store) GetCertificateTags(ctx context.Context, certificateID int64) ([]*domain.Tag, error) {
	// One transaction so a concurrent certificate delete cannot slip in
	// between the existence check and the association read.
	var models []tagModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m certificateModel
		err := tx.Select("id").First(&m, certificateID).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.WrongIDf("gift certificate", certificateID)
		}
		if err != nil {
			return apperrors.Storage(fmt.Errorf("check certificate: %w", err))
		}

		err = tx.Model(&certificateTagModel{}).
			Select("tag.id, tag.name").
			Joins("JOIN tag ON tag.id = gift_certificate_tag.tag_id").
			Where("gift_certificate_tag.gift_certificate_id = ?", certificateID).
			Order("gift_certificate_tag.rowid").
			Scan(&models).Error
		if err != nil {
			return apperrors.Storage(fmt.Errorf("query certificate tags: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(models))
	for _, m := range models {
		tags = append(tags, m.toDomain())
	}
	return tags, nil
}

// MostUsedTagForUser returns the tag of the user's ordered certificates with
// the highest order-cost sum, breaking ties by order count. Returns
// ErrWrongID for an unknown user and ErrTagForUserNotFound when no tag
// qualifies.
func (s *Store) MostUsedTagForUser(ctx context.Context, userID int64) (*domain.Tag, error) {
	var m tagModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u userModel
		err := tx.Select("id").First(&u, userID).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.WrongIDf("user", userID)
		}
		if err != nil {
			return apperrors.Storage(fmt.Errorf("check user: %w", err))
		}

		err = tx.Model(&orderModel{}).
			Select("tag.id, tag.name").
			Joins("JOIN gift_certificate_tag ON gift_certificate_tag.gift_certificate_id = orders.gift_certificate_id").
			Joins("JOIN tag ON tag.id = gift_certificate_tag.tag_id").
			Where("orders.user_id = ?", userID).
			Group("tag.id").
			Group("tag.name").
			Order("SUM(orders.cost) DESC").
			Order("COUNT(*) DESC").
			Limit(1).
			Scan(&m).Error
		if err != nil {
			return apperrors.Storage(fmt.Errorf("query most used tag: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, apperrors.TagForUserNotFound(userID)
	}
	return m.toDomain(), nil
}

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

// applyCertificateFilters attaches the conjunctive tag filter and the
// free-text search to a certificate query. Column names never come from the
// request; every user value binds as a parameter.
func applyCertificateFilters(db *gorm.DB, tx *gorm.DB, p query.Params) *gorm.DB {
	if len(p.TagNames) > 0 {
		sub := db.Model(&certificateTagModel{}).
			Select("gift_certificate_tag.gift_certificate_id").
			Joins("JOIN tag ON tag.id = gift_certificate_tag.tag_id").
			Where("tag.name IN ?", p.TagNames).
			Group("gift_certificate_tag.gift_certificate_id").
			Having("COUNT(DISTINCT tag.id) = ?", len(p.TagNames))
		tx = tx.Where("id IN (?)", sub)
	}
	if p.Search != "" {
		tx = tx.Where("(name || ' ' || description) LIKE ?", "%"+p.Search+"%")
	}
	return tx
}

// applySort expands validated sort orders into ORDER BY clauses. The column
// strings come from the allow-list, never from the request.
func applySort(tx *gorm.DB, orders []query.Order) *gorm.DB {
	for _, o := range orders {
		direction := "ASC"
		if o.Desc {
			direction = "DESC"
		}
		tx = tx.Order(o.Column + " " + direction)
	}
	return tx
}

// FindCertificates runs the dynamic certificate query in two phases: the
// filtered, sorted, paginated certificate page first, then one query loading
// the tag sets for every certificate on the page.
func (s *Store) FindCertificates(ctx context.Context, p query.Params) ([]*domain.Certificate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	orders, err := query.ParseSort(p.SortTokens, s.sortFields)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	tx := applyCertificateFilters(db, db.Model(&certificateModel{}), p)
	tx = applySort(tx, orders)
	tx = tx.Limit(p.Page.Size).Offset(p.Page.Offset())

	var models []certificateModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query certificates: %w", err))
	}

	certs := make([]*domain.Certificate, 0, len(models))
	byID := make(map[int64]*domain.Certificate, len(models))
	ids := make([]int64, 0, len(models))
	for _, m := range models {
		c, err := m.toDomain()
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("decode certificate: %w", err))
		}
		certs = append(certs, c)
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	if err := s.loadTags(ctx, ids, byID); err != nil {
		return nil, err
	}
	return certs, nil
}

// loadTags fetches the tag sets for a page of certificates in one query and
// distributes them, preserving attachment order via the join-table rowid.
func (s *Store) loadTags(ctx context.Context, ids []int64, byID map[int64]*domain.Certificate) error {
	if len(ids) == 0 {
		return nil
	}

	var rows []struct {
		GiftCertificateID int64
		ID                int64
		Name              string
	}
	err := s.db.WithContext(ctx).
		Model(&certificateTagModel{}).
		Select("gift_certificate_tag.gift_certificate_id, tag.id, tag.name").
		Joins("JOIN tag ON tag.id = gift_certificate_tag.tag_id").
		Where("gift_certificate_tag.gift_certificate_id IN ?", ids).
		Order("gift_certificate_tag.rowid").
		Scan(&rows).Error
	if err != nil {
		return apperrors.Storage(fmt.Errorf("query certificate tags: %w", err))
	}

	for _, r := range rows {
		if c, ok := byID[r.GiftCertificateID]; ok {
			c.Tags = append(c.Tags, domain.Tag{ID: r.ID, Name: r.Name})
		}
	}
	return nil
}

// GetCertificate retrieves a single certificate with its tag set.
// Returns ErrWrongID if absent.
func (s *Store) GetCertificate(ctx context.Context, id int64) (*domain.Certificate, error) {
	var m certificateModel
	err := s.db.WithContext(ctx).First(&m, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.WrongIDf("gift certificate", id)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query certificate: %w", err))
	}

	c, err := m.toDomain()
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("decode certificate: %w", err))
	}
	if err := s.loadTags(ctx, []int64{c.ID}, map[int64]*domain.Certificate{c.ID: c}); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCertificate inserts a certificate and its tag associations in one
// transaction, resolving submitted tags by name or inserting them.
func (s *Store) CreateCertificate(ctx context.Context, c *domain.Certificate) error {
	if err := validateTags(c.Tags); err != nil {
		return err
	}

	if c.CreateDate == nil && c.LastUpdateDate == nil {
		now := time.Now().UTC()
		c.CreateDate = &now
		c.LastUpdateDate = &now
	}

	m := certificateFromDomain(c)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return apperrors.Storage(fmt.Errorf("insert certificate: %w", err))
		}
		return replaceCertificateTags(tx, m.ID, c.Tags, false)
	})
	if err != nil {
		return err
	}
	c.ID = m.ID

	created, err := s.GetCertificate(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

// UpdateCertificate merges non-nil patch fields over the stored row and
// stamps last_update_date. A non-empty patch tag set replaces all prior
// associations.
func (s *Store) UpdateCertificate(ctx context.Context, id int64, patch domain.CertificatePatch) (*domain.Certificate, error) {
	if err := validateTags(patch.Tags); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"last_update_date": formatTime(time.Now()),
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Duration != nil {
		updates["duration"] = *patch.Duration
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&certificateModel{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return apperrors.Storage(fmt.Errorf("update certificate: %w", res.Error))
		}
		if res.RowsAffected == 0 {
			return apperrors.WrongIDf("gift certificate", id)
		}
		if len(patch.Tags) > 0 {
			return replaceCertificateTags(tx, id, patch.Tags, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCertificate(ctx, id)
}

// UpdateCertificateDuration sets only duration and last_update_date.
func (s *Store) UpdateCertificateDuration(ctx context.Context, id int64, duration int64) (*domain.Certificate, error) {
	res := s.db.WithContext(ctx).
		Model(&certificateModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"duration":         duration,
			"last_update_date": formatTime(time.Now()),
		})
	if res.Error != nil {
		return nil, apperrors.Storage(fmt.Errorf("update duration: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.WrongIDf("gift certificate", id)
	}
	return s.GetCertificate(ctx, id)
}

// DeleteCertificate removes the certificate and its association rows. Tags
// themselves are never deleted.
func (s *Store) DeleteCertificate(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gift_certificate_id = ?", id).Delete(&certificateTagModel{}).Error; err != nil {
			return apperrors.Storage(fmt.Errorf("delete tag associations: %w", err))
		}
		res := tx.Delete(&certificateModel{}, id)
		if res.Error != nil {
			return apperrors.Storage(fmt.Errorf("delete certificate: %w", res.Error))
		}
		if res.RowsAffected == 0 {
			return apperrors.WrongIDf("gift certificate", id)
		}
		return nil
	})
}

// replaceCertificateTags resolves each submitted tag by name or inserts it,
// then writes the association rows on the caller's transaction. With clear
// set, prior associations go first.
func replaceCertificateTags(tx *gorm.DB, certificateID int64, tags []domain.Tag, clear bool) error {
	if clear {
		if err := tx.Where("gift_certificate_id = ?", certificateID).Delete(&certificateTagModel{}).Error; err != nil {
			return apperrors.Storage(fmt.Errorf("clear tag associations: %w", err))
		}
	}

	for i := range tags {
		tagID, err := resolveOrCreateTag(tx, tags[i].Name)
		if err != nil {
			return err
		}
		tags[i].ID = tagID

		assoc := certificateTagModel{GiftCertificateID: certificateID, TagID: tagID}
		if err := tx.Create(&assoc).Error; err != nil {
			return apperrors.Storage(fmt.Errorf("insert tag association: %w", err))
		}
	}
	return nil
}

// resolveOrCreateTag looks a tag up by name and returns its id, inserting
// the tag if it does not exist yet.
func resolveOrCreateTag(tx *gorm.DB, name string) (int64, error) {
	var m tagModel
	err := tx.Where("name = ?", name).First(&m).Error
	if err == nil {
		return m.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, apperrors.Storage(fmt.Errorf("resolve tag: %w", err))
	}

	m = tagModel{Name: name}
	if err := tx.Create(&m).Error; err != nil {
		return 0, apperrors.Storage(fmt.Errorf("insert tag: %w", err))
	}
	return m.ID, nil
}

// validateTags rejects a tag set containing an empty name before any write.
func validateTags(tags []domain.Tag) error {
	for _, t := range tags {
		if t.Name == "" {
			return apperrors.InvalidTagName()
		}
	}
	return nil
}

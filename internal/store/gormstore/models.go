package gormstore

import (
	"github.com/Vyacheslaf/giftcert-server/internal/domain"
)

// The models map one-to-one onto the tables of the raw SQL backend, so both
// backends can open the same database file. Date columns are TEXT in the
// fixed-width layout; GORM's automatic CreatedAt/UpdatedAt handling is
// deliberately not used because the stamping rules are the store's business.

type certificateModel struct {
	ID             int64   `gorm:"primaryKey"`
	Name           string  `gorm:"not null"`
	Description    string  `gorm:"not null"`
	Price          int64   `gorm:"not null"`
	Duration       int64   `gorm:"not null"`
	CreateDate     *string `gorm:"type:text"`
	LastUpdateDate *string `gorm:"type:text"`
}

func (certificateModel) TableName() string { return "gift_certificate" }

func certificateFromDomain(c *domain.Certificate) certificateModel {
	return certificateModel{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Price:          c.Price,
		Duration:       c.Duration,
		CreateDate:     timeString(c.CreateDate),
		LastUpdateDate: timeString(c.LastUpdateDate),
	}
}

func (m certificateModel) toDomain() (*domain.Certificate, error) {
	createDate, err := timeValue(m.CreateDate)
	if err != nil {
		return nil, err
	}
	updateDate, err := timeValue(m.LastUpdateDate)
	if err != nil {
		return nil, err
	}
	return &domain.Certificate{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Price:          m.Price,
		Duration:       m.Duration,
		CreateDate:     createDate,
		LastUpdateDate: updateDate,
		Tags:           []domain.Tag{},
	}, nil
}

type tagModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (tagModel) TableName() string { return "tag" }

func (m tagModel) toDomain() *domain.Tag {
	return &domain.Tag{ID: m.ID, Name: m.Name}
}

// certificateTagModel is the association row. It is managed explicitly
// rather than through a many2many relation: replacement order and the
// delete-all-then-reinsert rule are easier to guarantee with the join table
// in hand.
type certificateTagModel struct {
	GiftCertificateID int64 `gorm:"primaryKey"`
	TagID             int64 `gorm:"primaryKey"`
}

func (certificateTagModel) TableName() string { return "gift_certificate_tag" }

type userModel struct {
	ID       int64  `gorm:"primaryKey"`
	Username string `gorm:"uniqueIndex;not null"`
	Email    string `gorm:"uniqueIndex;not null"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() *domain.User {
	return &domain.User{ID: m.ID, Username: m.Username, Email: m.Email}
}

type orderModel struct {
	ID                int64  `gorm:"primaryKey"`
	UserID            int64  `gorm:"not null;index"`
	GiftCertificateID int64  `gorm:"not null;index"`
	Cost              int64  `gorm:"not null"`
	PurchaseDate      string `gorm:"type:text;not null"`
}

func (orderModel) TableName() string { return "orders" }

func (m orderModel) toDomain() (*domain.Order, error) {
	purchased, err := parseTime(m.PurchaseDate)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		CertificateID: m.GiftCertificateID,
		Cost:          m.Cost,
		PurchaseDate:  purchased,
	}, nil
}

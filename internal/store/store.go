// Package store defines the persistence contract for the gift certificate
// server. Two interchangeable implementations exist: a hand-written SQL
// backend (internal/store/sqlite) and an ORM backend
// (internal/store/gormstore). Both must expose identical external semantics;
// the shared conformance suite in internal/store/storetest enforces that.
package store

import (
	"context"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

// Store defines the interface for all persistence operations.
//
// Every multi-step mutation (certificate create with tags, update with tag
// replacement, duration update, order creation) executes as a single
// transaction: either all sub-steps commit together or none do. Validation
// errors (sort tokens, tag names) surface before any query runs.
type Store interface {
	// Lifecycle
	Close() error

	// Certificates
	//
	// CreateCertificate assigns the storage-generated id. When both
	// CreateDate and LastUpdateDate are unset it stamps them with the same
	// UTC instant; when exactly one is set the other stays unset. Each
	// submitted tag resolves by name to an existing tag id or is inserted,
	// before the association rows are written.
	CreateCertificate(ctx context.Context, c *domain.Certificate) error
	GetCertificate(ctx context.Context, id int64) (*domain.Certificate, error)
	// FindCertificates runs the dynamic query: conjunctive tag filter,
	// free-text search over name+description, multi-key sort, and SQL-level
	// pagination. Each returned certificate carries its full, ordered tag set.
	FindCertificates(ctx context.Context, p query.Params) ([]*domain.Certificate, error)
	// UpdateCertificate merges non-nil patch fields over stored values and
	// stamps LastUpdateDate. A non-empty patch tag set replaces all prior
	// associations. Returns ErrWrongID for an unknown certificate.
	UpdateCertificate(ctx context.Context, id int64, patch domain.CertificatePatch) (*domain.Certificate, error)
	// UpdateCertificateDuration is the narrow partial-update path: it sets
	// only duration and last_update_date.
	UpdateCertificateDuration(ctx context.Context, id int64, duration int64) (*domain.Certificate, error)
	// DeleteCertificate removes the certificate and its tag associations but
	// never the tags themselves. Orders referencing the certificate are
	// kept; their cost is a purchase-time snapshot.
	DeleteCertificate(ctx context.Context, id int64) error

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	ListTags(ctx context.Context, page query.Page) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
	// GetCertificateTags checks that the certificate exists, then reads its
	// tag set in attachment order, both within one transaction.
	GetCertificateTags(ctx context.Context, certificateID int64) ([]*domain.Tag, error)
	// MostUsedTagForUser returns the tag of the user's orders' certificates
	// whose order-cost sum is highest (frequency breaks ties). A user with
	// no qualifying tag yields ErrTagForUserNotFound, not an empty result.
	MostUsedTagForUser(ctx context.Context, userID int64) (*domain.Tag, error)

	// Users
	//
	// Users are read-only through the HTTP API; CreateUser exists for the
	// seeder and tests.
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, page query.Page) ([]*domain.User, error)

	// Orders
	//
	// CreateOrder validates that the user and certificate exist, snapshots
	// the certificate's current price into Cost, and stamps PurchaseDate.
	CreateOrder(ctx context.Context, o *domain.Order) error
	GetUserOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID int64, page query.Page) ([]*domain.Order, error)
}

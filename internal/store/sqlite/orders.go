package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

const orderColumns = `id, user_id, gift_certificate_id, cost, purchase_date`

func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var (
		o            domain.Order
		purchaseDate string
	)
	if err := scanner.Scan(&o.ID, &o.UserID, &o.CertificateID, &o.Cost, &purchaseDate); err != nil {
		return nil, err
	}
	t, err := parseTime(purchaseDate)
	if err != nil {
		return nil, err
	}
	o.PurchaseDate = t
	return &o, nil
}

// CreateOrder places an order in one transaction: it verifies the user and
// certificate exist, snapshots the certificate's current price into Cost,
// and stamps PurchaseDate. Later price changes never alter recorded orders.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	var userExists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, o.UserID).Scan(&userExists)
	if err == sql.ErrNoRows {
		return apperrors.WrongOrderFields(o.UserID, o.CertificateID)
	}
	if err != nil {
		return apperrors.Storage(fmt.Errorf("check user: %w", err))
	}

	var price int64
	err = tx.QueryRowContext(ctx,
		`SELECT price FROM gift_certificate WHERE id = ?`, o.CertificateID).Scan(&price)
	if err == sql.ErrNoRows {
		return apperrors.WrongOrderFields(o.UserID, o.CertificateID)
	}
	if err != nil {
		return apperrors.Storage(fmt.Errorf("check certificate: %w", err))
	}

	o.Cost = price
	o.PurchaseDate = time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, gift_certificate_id, cost, purchase_date)
		VALUES (?, ?, ?, ?)`,
		o.UserID, o.CertificateID, o.Cost, formatTime(o.PurchaseDate))
	if err != nil {
		return apperrors.Storage(fmt.Errorf("insert order: %w", err))
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("order id: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// GetUserOrder retrieves one order scoped to its owner. An order that exists
// but belongs to another user is indistinguishable from a missing one:
// both yield ErrWrongOrderIDForUser.
func (s *Store) GetUserOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? AND user_id = ?`, orderID, userID)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.WrongOrderIDForUser(orderID, userID)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query order: %w", err))
	}
	return o, nil
}

// ListUserOrders returns a page of the user's orders ordered by id.
// Returns ErrWrongID when the user does not exist.
func (s *Store) ListUserOrders(ctx context.Context, userID int64, page query.Page) ([]*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck // read-only

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperrors.WrongIDf("user", userID)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("check user: %w", err))
	}

	page.Normalize()
	rows, err := tx.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		userID, page.Size, page.Offset())
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query orders: %w", err))
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scan order: %w", err))
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("iterate orders: %w", err))
	}
	return orders, nil
}

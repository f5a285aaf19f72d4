package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

const tagColumns = `id, name`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	if err := scanner.Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts a tag. A name collision surfaces as ErrDuplicateKey.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if t.Name == "" {
		return apperrors.InvalidTagName()
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tag (name) VALUES (?)`, t.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateKeyf("tag %q already exists", t.Name)
		}
		return apperrors.Storage(fmt.Errorf("insert tag: %w", err))
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("tag id: %w", err))
	}
	return nil
}

// GetTag retrieves a tag by id. Returns ErrWrongID if absent.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tag WHERE id = ?`, id)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.WrongIDf("tag", id)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query tag: %w", err))
	}
	return t, nil
}

// ListTags returns a page of tags ordered by id.
func (s *Store) ListTags(ctx context.Context, page query.Page) ([]*domain.Tag, error) {
	page.Normalize()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tag ORDER BY id LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query tags: %w", err))
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scan tag: %w", err))
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("iterate tags: %w", err))
	}
	return tags, nil
}

// DeleteTag removes a tag and its certificate associations in one
// transaction. Certificates keep their other tags.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM gift_certificate_tag WHERE tag_id = ?`, id); err != nil {
		return apperrors.Storage(fmt.Errorf("delete tag associations: %w", err))
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tag WHERE id = ?`, id)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("delete tag: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("rows affected: %w", err))
	}
	if affected == 0 {
		return apperrors.WrongIDf("tag", id)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// GetCertificateTags returns the tags attached to a certificate in
// attachment order. Returns ErrWrongID when the certificate is absent;
// a tagless certificate yields an empty slice.
func (s *Store) GetCertificateTags(ctx context.Context, certificateID int64) ([]*domain.Tag, error) {
	// One transaction so a concurrent certificate delete cannot slip in
	// between the existence check and the association read.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck // read-only

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM gift_certificate WHERE id = ?`, certificateID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperrors.WrongIDf("gift certificate", certificateID)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("check certificate: %w", err))
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM gift_certificate_tag gct
		JOIN tag t ON t.id = gct.tag_id
		WHERE gct.gift_certificate_id = ?
		ORDER BY gct.rowid`, certificateID)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query certificate tags: %w", err))
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scan tag: %w", err))
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("iterate tags: %w", err))
	}
	return tags, nil
}

// MostUsedTagForUser returns the tag most frequently attached to the
// certificates the user ordered, weighted by total order cost: highest
// summed cost wins, order count breaks ties. Returns ErrWrongID when the
// user is absent and ErrTagForUserNotFound when the user has no orders on
// tagged certificates.
func (s *Store) MostUsedTagForUser(ctx context.Context, userID int64) (*domain.Tag, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck // read-only

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperrors.WrongIDf("user", userID)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("check user: %w", err))
	}

	row := tx.QueryRowContext(ctx, `
		SELECT t.id, t.name
		FROM orders o
		JOIN gift_certificate_tag gct ON gct.gift_certificate_id = o.gift_certificate_id
		JOIN tag t ON t.id = gct.tag_id
		WHERE o.user_id = ?
		GROUP BY t.id, t.name
		ORDER BY SUM(o.cost) DESC, COUNT(*) DESC
		LIMIT 1`, userID)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.TagForUserNotFound(userID)
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query most used tag: %w", err))
	}
	return t, nil
}

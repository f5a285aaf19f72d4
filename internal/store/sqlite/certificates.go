package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

// certificateColumns is the ordered list of certificate columns selected by
// every certificate query. Must match the scan order in foldCertificateRows.
const certificateColumns = `id, name, description, price, duration, create_date, last_update_date`

// buildCertificateSelect assembles the inner certificate query:
//
//	SELECT ... WHERE <tag filter> AND <search filter> ORDER BY <sort> LIMIT ? OFFSET ?
//
// Column identifiers come exclusively from the allow-list (trusted); all
// user-supplied values bind as placeholders. The caller must have validated
// p and parsed orders before this point.
func buildCertificateSelect(p query.Params, orders []query.Order) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT ` + certificateColumns + ` FROM gift_certificate`)

	var where []string
	if len(p.TagNames) > 0 {
		placeholders := strings.Repeat("?,", len(p.TagNames))
		placeholders = placeholders[:len(placeholders)-1]
		// Conjunctive tag filter: a certificate qualifies only when the
		// number of its distinct tags matching the requested names equals
		// the size of the requested set.
		where = append(where, `id IN (
			SELECT gct.gift_certificate_id
			FROM gift_certificate_tag gct
			JOIN tag t ON t.id = gct.tag_id
			WHERE t.name IN (`+placeholders+`)
			GROUP BY gct.gift_certificate_id
			HAVING COUNT(DISTINCT t.id) = ?)`)
		for _, name := range p.TagNames {
			args = append(args, name)
		}
		args = append(args, len(p.TagNames))
	}
	if p.Search != "" {
		where = append(where, `(name || ' ' || description) LIKE ?`)
		args = append(args, "%"+p.Search+"%")
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	if len(orders) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range orders {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(o.Column)
			if o.Desc {
				sb.WriteString(" DESC")
			} else {
				sb.WriteString(" ASC")
			}
		}
	}

	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, p.Page.Size, p.Page.Offset())

	return sb.String(), args
}

// wrapWithTagJoin wraps an inner certificate select with the LEFT JOIN that
// attaches tag columns. Certificates with no tags produce one row with NULL
// tag columns; a certificate with N tags produces N rows. The outer ORDER BY
// replays the inner sort keys (now on the derived table), then id to keep
// each certificate's rows together, then join rowid so tags come back in the
// order they were attached.
func wrapWithTagJoin(inner string, orders []query.Order) string {
	var sb strings.Builder
	sb.WriteString(`SELECT c.id, c.name, c.description, c.price, c.duration,
		c.create_date, c.last_update_date, t.id, t.name
		FROM (` + inner + `) c
		LEFT JOIN gift_certificate_tag gct ON gct.gift_certificate_id = c.id
		LEFT JOIN tag t ON t.id = gct.tag_id
		ORDER BY `)
	for _, o := range orders {
		sb.WriteString("c." + o.Column)
		if o.Desc {
			sb.WriteString(" DESC")
		}
		sb.WriteString(", ")
	}
	sb.WriteString("c.id, gct.rowid")
	return sb.String()
}

// foldCertificateRows is a single linear pass over flat join rows keyed by
// certificate id. The first row for an id fixes the scalar fields; later
// rows for the same id only contribute their tag. First-seen order is
// preserved, so the fold never reorders what the SQL sorted.
func foldCertificateRows(rows *sql.Rows) ([]*domain.Certificate, error) {
	byID := make(map[int64]*domain.Certificate)
	var out []*domain.Certificate

	for rows.Next() {
		var (
			c          domain.Certificate
			createDate sql.NullString
			updateDate sql.NullString
			tagID      sql.NullInt64
			tagName    sql.NullString
		)
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.Price,
			&c.Duration,
			&createDate,
			&updateDate,
			&tagID,
			&tagName,
		)
		if err != nil {
			return nil, err
		}

		cert, seen := byID[c.ID]
		if !seen {
			c.CreateDate, err = parseNullableTime(createDate)
			if err != nil {
				return nil, err
			}
			c.LastUpdateDate, err = parseNullableTime(updateDate)
			if err != nil {
				return nil, err
			}
			c.Tags = []domain.Tag{}
			cert = &c
			byID[c.ID] = cert
			out = append(out, cert)
		}

		if tagID.Valid {
			cert.Tags = append(cert.Tags, domain.Tag{ID: tagID.Int64, Name: tagName.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// FindCertificates runs the dynamic certificate query. Sort tokens and tag
// names are validated before any SQL executes; the row set comes back in one
// round trip as a flat certificate x tag join.
func (s *Store) FindCertificates(ctx context.Context, p query.Params) ([]*domain.Certificate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	orders, err := query.ParseSort(p.SortTokens, s.sortFields)
	if err != nil {
		return nil, err
	}

	inner, args := buildCertificateSelect(p, orders)
	rows, err := s.db.QueryContext(ctx, wrapWithTagJoin(inner, orders), args...)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query certificates: %w", err))
	}
	defer rows.Close()

	certs, err := foldCertificateRows(rows)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("scan certificates: %w", err))
	}
	if certs == nil {
		certs = []*domain.Certificate{}
	}
	return certs, nil
}

// GetCertificate retrieves a single certificate with its tag set.
// Returns ErrWrongID if the certificate does not exist.
func (s *Store) GetCertificate(ctx context.Context, id int64) (*domain.Certificate, error) {
	return getCertificate(ctx, s.db, id)
}

// getCertificate runs against either the pool or an open transaction.
func getCertificate(ctx context.Context, q dbtx, id int64) (*domain.Certificate, error) {
	inner := `SELECT ` + certificateColumns + ` FROM gift_certificate WHERE id = ?`
	rows, err := q.QueryContext(ctx, wrapWithTagJoin(inner, nil), id)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("query certificate: %w", err))
	}
	defer rows.Close()

	certs, err := foldCertificateRows(rows)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("scan certificate: %w", err))
	}
	if len(certs) == 0 {
		return nil, apperrors.WrongIDf("gift certificate", id)
	}
	return certs[0], nil
}

// CreateCertificate inserts a certificate together with its tag
// associations in one transaction. Submitted tags resolve by name to
// existing tag ids or are inserted fresh; a malformed tag fails the whole
// mutation before anything is written.
func (s *Store) CreateCertificate(ctx context.Context, c *domain.Certificate) error {
	if err := validateTags(c.Tags); err != nil {
		return err
	}

	// Both dates unset: stamp both with the same instant. Exactly one set:
	// the other stays NULL, never inferred.
	if c.CreateDate == nil && c.LastUpdateDate == nil {
		now := time.Now().UTC()
		c.CreateDate = &now
		c.LastUpdateDate = &now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO gift_certificate (name, description, price, duration, create_date, last_update_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name,
		c.Description,
		c.Price,
		c.Duration,
		nullTimeString(c.CreateDate),
		nullTimeString(c.LastUpdateDate),
	)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("insert certificate: %w", err))
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("certificate id: %w", err))
	}

	if err := replaceCertificateTags(ctx, tx, c.ID, c.Tags, false); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage(fmt.Errorf("commit: %w", err))
	}

	// Reflect resolved tag ids back to the caller.
	created, err := s.GetCertificate(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

// UpdateCertificate merges non-nil patch fields over the stored row via
// COALESCE and stamps last_update_date. A non-empty patch tag set removes
// all prior associations and writes the newly resolved set in their place.
func (s *Store) UpdateCertificate(ctx context.Context, id int64, patch domain.CertificatePatch) (*domain.Certificate, error) {
	if err := validateTags(patch.Tags); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE gift_certificate SET
			name = COALESCE(?, name),
			description = COALESCE(?, description),
			price = COALESCE(?, price),
			duration = COALESCE(?, duration),
			last_update_date = ?
		WHERE id = ?`,
		nullableString(patch.Name),
		nullableString(patch.Description),
		nullableInt64(patch.Price),
		nullableInt64(patch.Duration),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("update certificate: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("rows affected: %w", err))
	}
	if affected == 0 {
		return nil, apperrors.WrongIDf("gift certificate", id)
	}

	if len(patch.Tags) > 0 {
		if err := replaceCertificateTags(ctx, tx, id, patch.Tags, true); err != nil {
			return nil, err
		}
	}

	updated, err := getCertificate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("commit: %w", err))
	}
	return updated, nil
}

// UpdateCertificateDuration is the narrow partial-update path: it touches
// only duration and last_update_date, bypassing the general merge.
func (s *Store) UpdateCertificateDuration(ctx context.Context, id int64, duration int64) (*domain.Certificate, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE gift_certificate SET duration = ?, last_update_date = ? WHERE id = ?`,
		duration,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("update duration: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("rows affected: %w", err))
	}
	if affected == 0 {
		return nil, apperrors.WrongIDf("gift certificate", id)
	}
	return s.GetCertificate(ctx, id)
}

// DeleteCertificate removes the certificate row; association rows go with it
// via the foreign-key cascade. Tags themselves are never deleted.
func (s *Store) DeleteCertificate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gift_certificate WHERE id = ?`, id)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("delete certificate: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("rows affected: %w", err))
	}
	if affected == 0 {
		return apperrors.WrongIDf("gift certificate", id)
	}
	return nil
}

// replaceCertificateTags resolves each submitted tag by name (adopting the
// existing id) or inserts it, then writes the association rows, all on the
// caller's transaction. With clear set, prior associations are removed
// first (delete-all-then-reinsert, not merge).
func replaceCertificateTags(ctx context.Context, tx *sql.Tx, certificateID int64, tags []domain.Tag, clear bool) error {
	if clear {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM gift_certificate_tag WHERE gift_certificate_id = ?`, certificateID); err != nil {
			return apperrors.Storage(fmt.Errorf("clear tag associations: %w", err))
		}
	}

	for i := range tags {
		tagID, err := resolveOrCreateTag(ctx, tx, tags[i].Name)
		if err != nil {
			return err
		}
		tags[i].ID = tagID

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO gift_certificate_tag (gift_certificate_id, tag_id)
			VALUES (?, ?)`, certificateID, tagID); err != nil {
			return apperrors.Storage(fmt.Errorf("insert tag association: %w", err))
		}
	}
	return nil
}

// resolveOrCreateTag looks a tag up by name and returns its id, inserting
// the tag if it does not exist yet.
func resolveOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM tag WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, apperrors.Storage(fmt.Errorf("resolve tag: %w", err))
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO tag (name) VALUES (?)`, name)
	if err != nil {
		return 0, apperrors.Storage(fmt.Errorf("insert tag: %w", err))
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, apperrors.Storage(fmt.Errorf("tag id: %w", err))
	}
	return id, nil
}

// validateTags rejects a tag set containing a nil-equivalent (empty) name
// before any write happens.
func validateTags(tags []domain.Tag) error {
	for _, t := range tags {
		if t.Name == "" {
			return apperrors.InvalidTagName()
		}
	}
	return nil
}

// nullableString returns a sql.NullString from a *string.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableInt64 returns a sql.NullInt64 from an *int64.
func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// Package domain contains the core entities of the gift certificate server.
package domain

import "time"

// Certificate is the primary sellable item: a gift certificate with a price,
// a validity duration in days, and a set of reusable tags.
//
// CreateDate and LastUpdateDate are pointers because a caller may submit a
// certificate with neither, one, or both set. When both are unset at creation
// the store stamps them with the same UTC instant; when exactly one is set the
// other is stored as NULL, never inferred from its sibling.
type Certificate struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Price          int64      `json:"price"`    // currency-agnostic integer unit
	Duration       int64      `json:"duration"` // validity period in days
	CreateDate     *time.Time `json:"create_date,omitempty"`
	LastUpdateDate *time.Time `json:"last_update_date,omitempty"`

	// Tags is unique by tag id and preserves the order tags were first
	// attached. Deleting a certificate never deletes its tags.
	Tags []Tag `json:"tags"`
}

// CertificatePatch carries a partial update for a certificate.
// Nil fields mean "leave the stored value unchanged".
type CertificatePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Duration    *int64  `json:"duration,omitempty"`

	// Tags replaces all existing tag associations when non-empty.
	// Nil or empty leaves the current associations untouched.
	Tags []Tag `json:"tags,omitempty"`
}

// IsZero reports whether the patch would change nothing.
func (p CertificatePatch) IsZero() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Duration == nil && len(p.Tags) == 0
}

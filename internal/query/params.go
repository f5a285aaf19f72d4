package query

import "github.com/Vyacheslaf/giftcert-server/internal/errors"

// Default and maximum page sizes for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page holds zero-based pagination parameters. Offset is always page*size
// and pagination is applied at the SQL level, never in memory.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps pagination parameters into the supported range.
func (p *Page) Normalize() {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// Params is the full certificate query: conjunctive tag filter, free-text
// search, multi-key sort, and pagination.
type Params struct {
	// TagNames selects certificates associated with all named tags.
	// Empty means no tag filtering.
	TagNames []string

	// Search matches certificates whose name and description, joined by a
	// space, contain the term as a substring. Empty means no search filter.
	Search string

	// SortTokens are "field.direction" tokens applied in order as a stable
	// multi-key ORDER BY. Empty means storage-defined order.
	SortTokens []string

	Page Page
}

// Validate checks the filter inputs that must fail before any query
// executes. An empty tag name anywhere in the list is an error, unlike an
// empty search term, which is simply a no-op filter.
func (p *Params) Validate() error {
	for _, name := range p.TagNames {
		if name == "" {
			return errors.InvalidTagName()
		}
	}
	p.Page.Normalize()
	return nil
}

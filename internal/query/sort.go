// Package query models the request-parameter DSL shared by both store
// backends: sort tokens, tag and search filters, and pagination. Parsing and
// validation happen here, before any query is built, so that a bad request
// never reaches the database and both backends reject exactly the same input.
package query

import (
	"sort"
	"strings"

	"github.com/Vyacheslaf/giftcert-server/internal/errors"
)

// Order is one validated ordering key. Column is a trusted storage column
// name taken from an allow-list, never from user input, so it is safe to
// splice into query text. Values, by contrast, always bind as placeholders.
type Order struct {
	Column string
	Desc   bool
}

// SortFields maps API-visible sort field names to storage column names.
// Only fields present in the map are sortable; everything else is rejected.
// Keeping the map injectable decouples the API surface from column naming.
type SortFields map[string]string

// CertificateSortFields returns the default allow-list for certificate
// queries.
func CertificateSortFields() SortFields {
	return SortFields{
		"name":             "name",
		"create-date":      "create_date",
		"last-update-date": "last_update_date",
	}
}

// Fields returns the allow-listed field names in stable order, for error
// messages.
func (sf SortFields) Fields() []string {
	fields := make([]string, 0, len(sf))
	for f := range sf {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ParseSort parses sort tokens of the form "field.direction" into validated
// ordering keys. Direction is asc or desc, case-insensitive; field names are
// case-sensitive and must match the allow-list exactly. A token that is
// empty, malformed, or names a field outside the allow-list fails the whole
// request with ErrInvalidSortToken; no partial sort is ever applied. An
// empty token list yields no ordering (storage-defined order).
func ParseSort(tokens []string, allowed SortFields) ([]Order, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	orders := make([]Order, 0, len(tokens))
	for _, token := range tokens {
		field, direction, ok := strings.Cut(token, ".")
		if !ok || field == "" {
			return nil, errors.InvalidSortToken(token, allowed.Fields())
		}

		column, ok := allowed[field]
		if !ok {
			return nil, errors.InvalidSortToken(token, allowed.Fields())
		}

		var desc bool
		switch strings.ToLower(direction) {
		case "asc":
			desc = false
		case "desc":
			desc = true
		default:
			return nil, errors.InvalidSortToken(token, allowed.Fields())
		}

		orders = append(orders, Order{Column: column, Desc: desc})
	}

	return orders, nil
}

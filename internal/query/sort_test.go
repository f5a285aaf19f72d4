package query

import (
	"testing"

	"github.com/Vyacheslaf/giftcert-server/internal/errors"
)

func TestParseSort_SingleToken(t *testing.T) {
	orders, err := ParseSort([]string{"name.asc"}, CertificateSortFields())
	if err != nil {
		t.Fatalf("ParseSort: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Column != "name" || orders[0].Desc {
		t.Errorf("got %+v, want {name asc}", orders[0])
	}
}

func TestParseSort_MultiKeyPreservesOrder(t *testing.T) {
	orders, err := ParseSort([]string{"create-date.desc", "name.asc"}, CertificateSortFields())
	if err != nil {
		t.Fatalf("ParseSort: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].Column != "create_date" || !orders[0].Desc {
		t.Errorf("first key: got %+v, want {create_date desc}", orders[0])
	}
	if orders[1].Column != "name" || orders[1].Desc {
		t.Errorf("second key: got %+v, want {name asc}", orders[1])
	}
}

func TestParseSort_DirectionCaseInsensitive(t *testing.T) {
	for _, token := range []string{"name.ASC", "name.Asc", "name.DESC", "name.Desc"} {
		if _, err := ParseSort([]string{token}, CertificateSortFields()); err != nil {
			t.Errorf("token %q: unexpected error %v", token, err)
		}
	}
}

func TestParseSort_EmptyMeansNoOrdering(t *testing.T) {
	orders, err := ParseSort(nil, CertificateSortFields())
	if err != nil {
		t.Fatalf("ParseSort: %v", err)
	}
	if orders != nil {
		t.Errorf("expected nil orders, got %v", orders)
	}
}

func TestParseSort_RejectsBadTokens(t *testing.T) {
	bad := []string{
		"",
		"name",
		"name.",
		".asc",
		"name.upwards",
		"bogus.asc",
		"NAME.asc",                        // field names match exactly
		"Create-Date.desc",                // field names match exactly
		"price.asc",                       // not allow-listed
		"name.asc; DROP TABLE tag --.asc", // injection through the field slot
	}
	for _, token := range bad {
		_, err := ParseSort([]string{token}, CertificateSortFields())
		if !errors.Is(err, errors.ErrInvalidSortToken) {
			t.Errorf("token %q: got %v, want ErrInvalidSortToken", token, err)
		}
	}
}

func TestParseSort_OneBadTokenFailsAll(t *testing.T) {
	_, err := ParseSort([]string{"name.asc", "bogus.desc"}, CertificateSortFields())
	if !errors.Is(err, errors.ErrInvalidSortToken) {
		t.Fatalf("got %v, want ErrInvalidSortToken", err)
	}
}

func TestParseSort_ErrorNamesPatternAndFields(t *testing.T) {
	_, err := ParseSort([]string{"bogus.asc"}, CertificateSortFields())
	var domainErr *errors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	details, ok := domainErr.Details.(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", domainErr.Details)
	}
	if details["pattern"] != "field.(asc|desc)" {
		t.Errorf("pattern: got %v", details["pattern"])
	}
	fields, ok := details["allowed_fields"].([]string)
	if !ok || len(fields) != 3 {
		t.Errorf("allowed_fields: got %v", details["allowed_fields"])
	}
}

func TestParamsValidate(t *testing.T) {
	p := Params{TagNames: []string{"fun", ""}}
	if err := p.Validate(); !errors.Is(err, errors.ErrInvalidTagName) {
		t.Errorf("empty tag name: got %v, want ErrInvalidTagName", err)
	}

	p = Params{Search: ""}
	if err := p.Validate(); err != nil {
		t.Errorf("empty search term must be a no-op, got %v", err)
	}

	p = Params{Page: Page{Number: -3, Size: 0}}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.Page.Number != 0 || p.Page.Size != DefaultPageSize {
		t.Errorf("page not normalized: %+v", p.Page)
	}
}

func TestPageOffset(t *testing.T) {
	p := Page{Number: 3, Size: 25}
	if got := p.Offset(); got != 75 {
		t.Errorf("Offset: got %d, want 75", got)
	}
}

package sqlite

import (
	"strings"
	"testing"

	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

func TestBuildCertificateSelect(t *testing.T) {
	tests := []struct {
		name     string
		params   query.Params
		orders   []query.Order
		contains []string
		absent   []string
		args     []any
	}{
		{
			name:     "no filters",
			params:   query.Params{Page: query.Page{Number: 0, Size: 20}},
			contains: []string{"LIMIT ? OFFSET ?"},
			absent:   []string{"WHERE", "ORDER BY"},
			args:     []any{20, 0},
		},
		{
			name: "single tag",
			params: query.Params{
				TagNames: []string{"tag1"},
				Page:     query.Page{Number: 0, Size: 20},
			},
			contains: []string{"t.name IN (?)", "HAVING COUNT(DISTINCT t.id) = ?"},
			args:     []any{"tag1", 1, 20, 0},
		},
		{
			name: "conjunctive tags",
			params: query.Params{
				TagNames: []string{"tag1", "tag3"},
				Page:     query.Page{Number: 0, Size: 20},
			},
			contains: []string{"t.name IN (?,?)", "HAVING COUNT(DISTINCT t.id) = ?"},
			args:     []any{"tag1", "tag3", 2, 20, 0},
		},
		{
			name: "search binds as value",
			params: query.Params{
				Search: "x'; DROP TABLE tag --",
				Page:   query.Page{Number: 0, Size: 20},
			},
			contains: []string{"(name || ' ' || description) LIKE ?"},
			absent:   []string{"DROP TABLE"},
			args:     []any{"%x'; DROP TABLE tag --%", 20, 0},
		},
		{
			name:   "multi key sort",
			params: query.Params{Page: query.Page{Number: 2, Size: 10}},
			orders: []query.Order{
				{Column: "create_date", Desc: true},
				{Column: "name"},
			},
			contains: []string{"ORDER BY create_date DESC, name ASC"},
			args:     []any{10, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildCertificateSelect(tt.params, tt.orders)
			for _, want := range tt.contains {
				if !strings.Contains(sql, want) {
					t.Errorf("query missing %q:\n%s", want, sql)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(sql, bad) {
					t.Errorf("query contains %q:\n%s", bad, sql)
				}
			}
			if len(args) != len(tt.args) {
				t.Fatalf("args = %v, want %v", args, tt.args)
			}
			for i := range args {
				if args[i] != tt.args[i] {
					t.Errorf("arg[%d] = %v, want %v", i, args[i], tt.args[i])
				}
			}
		})
	}
}

func TestWrapWithTagJoin(t *testing.T) {
	outer := wrapWithTagJoin("SELECT "+certificateColumns+" FROM gift_certificate", []query.Order{
		{Column: "name", Desc: true},
	})
	if !strings.Contains(outer, "LEFT JOIN gift_certificate_tag gct") {
		t.Errorf("missing tag join:\n%s", outer)
	}
	// Inner sort keys replay on the derived table, then id groups rows,
	// then join rowid keeps attachment order.
	if !strings.Contains(outer, "ORDER BY c.name DESC, c.id, gct.rowid") {
		t.Errorf("unexpected outer order:\n%s", outer)
	}
}

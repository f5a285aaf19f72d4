// Package storetest holds the conformance suite that every store
// implementation must pass. Both the hand-written SQL backend and the ORM
// backend run the same suite, which pins down the externally observable
// semantics: dynamic query behavior, timestamp stamping, tag replacement,
// order cost snapshots, and the full typed-error surface.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	apperrors "github.com/Vyacheslaf/giftcert-server/internal/errors"
	"github.com/Vyacheslaf/giftcert-server/internal/query"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
)

// Factory opens a fresh, empty store for one test. Cleanup is the
// factory's responsibility (t.Cleanup).
type Factory func(t *testing.T) store.Store

// Run executes the full conformance suite against stores produced by f.
func Run(t *testing.T, f Factory) {
	t.Run("CertificateCreate", func(t *testing.T) { testCertificateCreate(t, f) })
	t.Run("CertificateTimestamps", func(t *testing.T) { testCertificateTimestamps(t, f) })
	t.Run("CertificateGet", func(t *testing.T) { testCertificateGet(t, f) })
	t.Run("CertificateUpdate", func(t *testing.T) { testCertificateUpdate(t, f) })
	t.Run("CertificateUpdateDuration", func(t *testing.T) { testCertificateUpdateDuration(t, f) })
	t.Run("CertificateDelete", func(t *testing.T) { testCertificateDelete(t, f) })
	t.Run("TagReuse", func(t *testing.T) { testTagReuse(t, f) })
	t.Run("TagReplacement", func(t *testing.T) { testTagReplacement(t, f) })
	t.Run("FindTagFilter", func(t *testing.T) { testFindTagFilter(t, f) })
	t.Run("FindSearch", func(t *testing.T) { testFindSearch(t, f) })
	t.Run("FindSort", func(t *testing.T) { testFindSort(t, f) })
	t.Run("FindSortRejection", func(t *testing.T) { testFindSortRejection(t, f) })
	t.Run("FindPagination", func(t *testing.T) { testFindPagination(t, f) })
	t.Run("FindCombined", func(t *testing.T) { testFindCombined(t, f) })
	t.Run("Tags", func(t *testing.T) { testTags(t, f) })
	t.Run("CertificateTags", func(t *testing.T) { testCertificateTags(t, f) })
	t.Run("Users", func(t *testing.T) { testUsers(t, f) })
	t.Run("Orders", func(t *testing.T) { testOrders(t, f) })
	t.Run("MostUsedTag", func(t *testing.T) { testMostUsedTag(t, f) })
}

func newCertificate(name, description string, price, duration int64, tagNames ...string) *domain.Certificate {
	tags := make([]domain.Tag, 0, len(tagNames))
	for _, n := range tagNames {
		tags = append(tags, domain.Tag{Name: n})
	}
	return &domain.Certificate{
		Name:        name,
		Description: description,
		Price:       price,
		Duration:    duration,
		Tags:        tags,
	}
}

func mustCreateCertificate(t *testing.T, s store.Store, c *domain.Certificate) *domain.Certificate {
	t.Helper()
	if err := s.CreateCertificate(context.Background(), c); err != nil {
		t.Fatalf("CreateCertificate(%q): %v", c.Name, err)
	}
	return c
}

func mustCreateUser(t *testing.T, s store.Store, username, email string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: email}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func tagNames(tags []domain.Tag) []string {
	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	return names
}

func certNames(certs []*domain.Certificate) []string {
	names := make([]string, len(certs))
	for i, c := range certs {
		names[i] = c.Name
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testCertificateCreate(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	c := mustCreateCertificate(t, s, newCertificate("spa day", "full body massage", 5000, 30, "wellness", "gift"))
	if c.ID == 0 {
		t.Fatal("expected generated id")
	}
	if !equalStrings(tagNames(c.Tags), []string{"wellness", "gift"}) {
		t.Fatalf("tags = %v, want [wellness gift]", tagNames(c.Tags))
	}
	for _, tg := range c.Tags {
		if tg.ID == 0 {
			t.Fatalf("tag %q has no resolved id", tg.Name)
		}
	}

	if _, err := s.GetCertificate(ctx, c.ID); err != nil {
		t.Fatalf("GetCertificate after create: %v", err)
	}

	bad := newCertificate("broken", "empty tag name", 100, 1)
	bad.Tags = []domain.Tag{{Name: ""}}
	err := s.CreateCertificate(ctx, bad)
	if !apperrors.Is(err, apperrors.ErrInvalidTagName) {
		t.Fatalf("create with empty tag name: got %v, want ErrInvalidTagName", err)
	}
	// The failed mutation must not have written anything.
	certs, err := s.FindCertificates(ctx, query.Params{Search: "broken"})
	if err != nil {
		t.Fatalf("FindCertificates: %v", err)
	}
	if len(certs) != 0 {
		t.Fatalf("rejected certificate was persisted: %v", certNames(certs))
	}
}

func testCertificateTimestamps(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	// Both unset: stamped with the same instant.
	c := mustCreateCertificate(t, s, newCertificate("stamped", "both dates unset", 100, 7))
	got, err := s.GetCertificate(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCertificate: %v", err)
	}
	if got.CreateDate == nil || got.LastUpdateDate == nil {
		t.Fatalf("dates not stamped: create=%v update=%v", got.CreateDate, got.LastUpdateDate)
	}
	if !got.CreateDate.Equal(*got.LastUpdateDate) {
		t.Fatalf("stamped dates differ: create=%v update=%v", got.CreateDate, got.LastUpdateDate)
	}

	// Exactly one set: the other stays unset, nothing inferred.
	when := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	partial := newCertificate("partial", "only create date", 100, 7)
	partial.CreateDate = &when
	mustCreateCertificate(t, s, partial)
	got, err = s.GetCertificate(ctx, partial.ID)
	if err != nil {
		t.Fatalf("GetCertificate: %v", err)
	}
	if got.CreateDate == nil || !got.CreateDate.Equal(when) {
		t.Fatalf("create date = %v, want %v", got.CreateDate, when)
	}
	if got.LastUpdateDate != nil {
		t.Fatalf("last update date = %v, want unset", got.LastUpdateDate)
	}
}

func testCertificateGet(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	c := mustCreateCertificate(t, s, newCertificate("lonely", "no tags", 100, 1))
	got, err := s.GetCertificate(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCertificate: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("tagless certificate tags = %v, want empty slice", got.Tags)
	}

	_, err = s.GetCertificate(ctx, 9999)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("missing certificate: got %v, want ErrWrongID", err)
	}
}

func testCertificateUpdate(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	c := mustCreateCertificate(t, s, newCertificate("original", "original description", 1000, 10, "keeper"))
	created, err := s.GetCertificate(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCertificate: %v", err)
	}

	name := "renamed"
	price := int64(2000)
	updated, err := s.UpdateCertificate(ctx, c.ID, domain.CertificatePatch{Name: &name, Price: &price})
	if err != nil {
		t.Fatalf("UpdateCertificate: %v", err)
	}
	if updated.Name != "renamed" || updated.Price != 2000 {
		t.Fatalf("patched fields not applied: name=%q price=%d", updated.Name, updated.Price)
	}
	if updated.Description != "original description" || updated.Duration != 10 {
		t.Fatalf("unpatched fields changed: desc=%q duration=%d", updated.Description, updated.Duration)
	}
	if !equalStrings(tagNames(updated.Tags), []string{"keeper"}) {
		t.Fatalf("tags changed without a patch tag set: %v", tagNames(updated.Tags))
	}
	if updated.LastUpdateDate == nil {
		t.Fatal("last update date not stamped")
	}
	if created.CreateDate == nil || !updated.CreateDate.Equal(*created.CreateDate) {
		t.Fatalf("create date changed on update: %v -> %v", created.CreateDate, updated.CreateDate)
	}

	_, err = s.UpdateCertificate(ctx, 9999, domain.CertificatePatch{Name: &name})
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("update of missing certificate: got %v, want ErrWrongID", err)
	}
}

func testCertificateUpdateDuration(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	c := mustCreateCertificate(t, s, newCertificate("short", "will be extended", 500, 5, "promo"))

	updated, err := s.UpdateCertificateDuration(ctx, c.ID, 90)
	if err != nil {
		t.Fatalf("UpdateCertificateDuration: %v", err)
	}
	if updated.Duration != 90 {
		t.Fatalf("duration = %d, want 90", updated.Duration)
	}
	if updated.Name != "short" || updated.Price != 500 {
		t.Fatalf("other fields changed: name=%q price=%d", updated.Name, updated.Price)
	}
	if !equalStrings(tagNames(updated.Tags), []string{"promo"}) {
		t.Fatalf("tags changed: %v", tagNames(updated.Tags))
	}
	if updated.LastUpdateDate == nil {
		t.Fatal("last update date not stamped")
	}

	_, err = s.UpdateCertificateDuration(ctx, 9999, 90)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("duration update of missing certificate: got %v, want ErrWrongID", err)
	}
}

func testCertificateDelete(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	c := mustCreateCertificate(t, s, newCertificate("doomed", "to be deleted", 100, 1, "survivor"))
	if err := s.DeleteCertificate(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCertificate: %v", err)
	}
	_, err := s.GetCertificate(ctx, c.ID)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("get after delete: got %v, want ErrWrongID", err)
	}

	// Deleting the certificate must not delete its tags.
	tags, err := s.ListTags(ctx, query.Page{})
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	found := false
	for _, tg := range tags {
		if tg.Name == "survivor" {
			found = true
		}
	}
	if !found {
		t.Fatal("tag deleted along with certificate")
	}

	err = s.DeleteCertificate(ctx, c.ID)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("second delete: got %v, want ErrWrongID", err)
	}
}

func testTagReuse(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	a := mustCreateCertificate(t, s, newCertificate("first", "first cert", 100, 1, "shared"))
	b := mustCreateCertificate(t, s, newCertificate("second", "second cert", 200, 2, "shared"))

	if a.Tags[0].ID != b.Tags[0].ID {
		t.Fatalf("shared tag resolved to different ids: %d vs %d", a.Tags[0].ID, b.Tags[0].ID)
	}

	tags, err := s.ListTags(ctx, query.Page{})
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	count := 0
	for _, tg := range tags {
		if tg.Name == "shared" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("tag %q stored %d times, want 1", "shared", count)
	}
}

func testTagReplacement(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	c := mustCreateCertificate(t, s, newCertificate("retagged", "tags get replaced", 100, 1, "old1", "old2"))

	updated, err := s.UpdateCertificate(ctx, c.ID, domain.CertificatePatch{
		Tags: []domain.Tag{{Name: "old2"}, {Name: "new1"}},
	})
	if err != nil {
		t.Fatalf("UpdateCertificate: %v", err)
	}
	if !equalStrings(tagNames(updated.Tags), []string{"old2", "new1"}) {
		t.Fatalf("tags = %v, want [old2 new1]", tagNames(updated.Tags))
	}

	// Replacement detaches old1 from the certificate but keeps the tag row.
	tags, err := s.ListTags(ctx, query.Page{})
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	if !equalStrings(names, []string{"old1", "old2", "new1"}) {
		t.Fatalf("tag table = %v, want [old1 old2 new1]", names)
	}
}

// seedTagFilterData creates the canonical three-certificate fixture:
// cert1 {tag1 tag2}, cert2 {tag2 tag3}, cert3 {tag1 tag2 tag3}.
func seedTagFilterData(t *testing.T, s store.Store) {
	t.Helper()
	mustCreateCertificate(t, s, newCertificate("cert1", "one", 100, 1, "tag1", "tag2"))
	mustCreateCertificate(t, s, newCertificate("cert2", "two", 200, 2, "tag2", "tag3"))
	mustCreateCertificate(t, s, newCertificate("cert3", "three", 300, 3, "tag1", "tag2", "tag3"))
}

func testFindTagFilter(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()
	seedTagFilterData(t, s)

	cases := []struct {
		tags []string
		want []string
	}{
		{[]string{"tag1"}, []string{"cert1", "cert3"}},
		{[]string{"tag1", "tag3"}, []string{"cert3"}},
		{[]string{"tag1", "tag2", "tag3"}, []string{"cert3"}},
		{[]string{"tag2"}, []string{"cert1", "cert2", "cert3"}},
		{[]string{"nosuch"}, nil},
		{[]string{"tag1", "nosuch"}, nil},
	}
	for _, tc := range cases {
		certs, err := s.FindCertificates(ctx, query.Params{
			TagNames:   tc.tags,
			SortTokens: []string{"name.asc"},
		})
		if err != nil {
			t.Fatalf("FindCertificates(tags=%v): %v", tc.tags, err)
		}
		if !equalStrings(certNames(certs), tc.want) {
			t.Errorf("tags=%v: got %v, want %v", tc.tags, certNames(certs), tc.want)
		}
	}

	_, err := s.FindCertificates(ctx, query.Params{TagNames: []string{"tag1", ""}})
	if !apperrors.Is(err, apperrors.ErrInvalidTagName) {
		t.Fatalf("empty tag name in filter: got %v, want ErrInvalidTagName", err)
	}
}

func testFindSearch(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	mustCreateCertificate(t, s, newCertificate("ocean cruise", "seven days at sea", 9000, 7))
	mustCreateCertificate(t, s, newCertificate("cooking class", "learn seafood dishes", 1500, 1))
	mustCreateCertificate(t, s, newCertificate("museum pass", "annual entry", 500, 365))

	cases := []struct {
		search string
		want   []string
	}{
		{"sea", []string{"cooking class", "ocean cruise"}},
		{"cruise", []string{"ocean cruise"}},
		{"annual", []string{"museum pass"}},
		{"zzz", nil},
		// Substring may span name into description via the joining space.
		{"cruise seven", []string{"ocean cruise"}},
	}
	for _, tc := range cases {
		certs, err := s.FindCertificates(ctx, query.Params{
			Search:     tc.search,
			SortTokens: []string{"name.asc"},
		})
		if err != nil {
			t.Fatalf("FindCertificates(search=%q): %v", tc.search, err)
		}
		if !equalStrings(certNames(certs), tc.want) {
			t.Errorf("search=%q: got %v, want %v", tc.search, certNames(certs), tc.want)
		}
	}
}

func testFindSort(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	// Insert out of alphabetical order with controlled create dates.
	day := func(d int) *time.Time {
		ts := time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	for _, row := range []struct {
		name string
		d    int
	}{
		{"banana", 3},
		{"apple", 3},
		{"cherry", 1},
	} {
		c := newCertificate(row.name, "fruit", 100, 1)
		c.CreateDate = day(row.d)
		mustCreateCertificate(t, s, c)
	}

	cases := []struct {
		tokens []string
		want   []string
	}{
		{[]string{"name.asc"}, []string{"apple", "banana", "cherry"}},
		{[]string{"name.desc"}, []string{"cherry", "banana", "apple"}},
		{[]string{"create-date.asc", "name.desc"}, []string{"cherry", "banana", "apple"}},
		{[]string{"create-date.desc", "name.asc"}, []string{"apple", "banana", "cherry"}},
		{[]string{"name.DESC"}, []string{"cherry", "banana", "apple"}},
	}
	for _, tc := range cases {
		certs, err := s.FindCertificates(ctx, query.Params{SortTokens: tc.tokens})
		if err != nil {
			t.Fatalf("FindCertificates(sort=%v): %v", tc.tokens, err)
		}
		if !equalStrings(certNames(certs), tc.want) {
			t.Errorf("sort=%v: got %v, want %v", tc.tokens, certNames(certs), tc.want)
		}
	}
}

func testFindSortRejection(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()
	mustCreateCertificate(t, s, newCertificate("anything", "present", 100, 1))

	bad := [][]string{
		{"bogus.asc"},
		{"price.asc"},
		{"name"},
		{"name.sideways"},
		{"NAME.ASC"},
		{"name.asc; DROP TABLE tag --.asc"},
		{"name.asc", "bogus.desc"},
	}
	for _, tokens := range bad {
		_, err := s.FindCertificates(ctx, query.Params{SortTokens: tokens})
		if !apperrors.Is(err, apperrors.ErrInvalidSortToken) {
			t.Errorf("sort=%v: got %v, want ErrInvalidSortToken", tokens, err)
		}
	}

	// The injection attempt above must not have damaged anything.
	if _, err := s.ListTags(ctx, query.Page{}); err != nil {
		t.Fatalf("ListTags after injection attempts: %v", err)
	}
}

func testFindPagination(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		mustCreateCertificate(t, s, newCertificate(fmt.Sprintf("cert-%d", i), "pageable", 100, 1, "common"))
	}

	var all []string
	for page := 0; ; page++ {
		certs, err := s.FindCertificates(ctx, query.Params{
			SortTokens: []string{"name.asc"},
			Page:       query.Page{Number: page, Size: 3},
		})
		if err != nil {
			t.Fatalf("FindCertificates(page=%d): %v", page, err)
		}
		if page < 2 && len(certs) != 3 {
			t.Fatalf("page %d: got %d certificates, want 3", page, len(certs))
		}
		if len(certs) == 0 {
			break
		}
		// Tags must be populated even on inner pages.
		for _, c := range certs {
			if !equalStrings(tagNames(c.Tags), []string{"common"}) {
				t.Fatalf("page %d: certificate %q tags = %v", page, c.Name, tagNames(c.Tags))
			}
		}
		all = append(all, certNames(certs)...)
	}

	want := []string{"cert-0", "cert-1", "cert-2", "cert-3", "cert-4", "cert-5", "cert-6"}
	if !equalStrings(all, want) {
		t.Fatalf("pages concatenated = %v, want %v", all, want)
	}
}

func testFindCombined(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()
	seedTagFilterData(t, s)
	mustCreateCertificate(t, s, newCertificate("cert4", "one more", 400, 4, "tag2"))

	certs, err := s.FindCertificates(ctx, query.Params{
		TagNames:   []string{"tag2"},
		Search:     "one",
		SortTokens: []string{"name.desc"},
		Page:       query.Page{Number: 0, Size: 10},
	})
	if err != nil {
		t.Fatalf("FindCertificates: %v", err)
	}
	if !equalStrings(certNames(certs), []string{"cert4", "cert1"}) {
		t.Fatalf("combined filters: got %v, want [cert4 cert1]", certNames(certs))
	}
}

func testTags(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	tg := &domain.Tag{Name: "standalone"}
	if err := s.CreateTag(ctx, tg); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if tg.ID == 0 {
		t.Fatal("expected generated id")
	}

	err := s.CreateTag(ctx, &domain.Tag{Name: "standalone"})
	if !apperrors.Is(err, apperrors.ErrDuplicateKey) {
		t.Fatalf("duplicate tag: got %v, want ErrDuplicateKey", err)
	}

	err = s.CreateTag(ctx, &domain.Tag{Name: ""})
	if !apperrors.Is(err, apperrors.ErrInvalidTagName) {
		t.Fatalf("empty tag name: got %v, want ErrInvalidTagName", err)
	}

	got, err := s.GetTag(ctx, tg.ID)
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if got.Name != "standalone" {
		t.Fatalf("tag name = %q", got.Name)
	}

	_, err = s.GetTag(ctx, 9999)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("missing tag: got %v, want ErrWrongID", err)
	}

	if err := s.DeleteTag(ctx, tg.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	err = s.DeleteTag(ctx, tg.ID)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("second delete: got %v, want ErrWrongID", err)
	}
}

func testCertificateTags(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	c := mustCreateCertificate(t, s, newCertificate("tagged", "carries tags", 100, 1, "b-tag", "a-tag"))

	tags, err := s.GetCertificateTags(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCertificateTags: %v", err)
	}
	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	// Attachment order, not alphabetical.
	if !equalStrings(names, []string{"b-tag", "a-tag"}) {
		t.Fatalf("tags = %v, want [b-tag a-tag]", names)
	}

	// Deleting a tag detaches it from the certificate but keeps the rest.
	if err := s.DeleteTag(ctx, tags[0].ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	got, err := s.GetCertificate(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCertificate after tag delete: %v", err)
	}
	if !equalStrings(tagNames(got.Tags), []string{"a-tag"}) {
		t.Fatalf("tags after delete = %v, want [a-tag]", tagNames(got.Tags))
	}

	_, err = s.GetCertificateTags(ctx, 9999)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("tags of missing certificate: got %v, want ErrWrongID", err)
	}
}

func testUsers(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	mustCreateUser(t, s, "bob", "bob@example.com")

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Fatalf("user = %+v", got)
	}

	_, err = s.GetUser(ctx, 9999)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("missing user: got %v, want ErrWrongID", err)
	}

	users, err := s.ListUsers(ctx, query.Page{})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}

	// Usernames and emails are unique.
	err = s.CreateUser(ctx, &domain.User{Username: "alice", Email: "alice2@example.com"})
	if !apperrors.Is(err, apperrors.ErrDuplicateKey) {
		t.Fatalf("duplicate username: got %v, want ErrDuplicateKey", err)
	}
	err = s.CreateUser(ctx, &domain.User{Username: "alice2", Email: "alice@example.com"})
	if !apperrors.Is(err, apperrors.ErrDuplicateKey) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicateKey", err)
	}
	users, err = s.ListUsers(ctx, query.Page{})
	if err != nil {
		t.Fatalf("ListUsers after rejected duplicates: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users after rejected duplicates, want 2", len(users))
	}
}

func testOrders(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "buyer", "buyer@example.com")
	other := mustCreateUser(t, s, "other", "other@example.com")
	c := mustCreateCertificate(t, s, newCertificate("orderable", "a thing to buy", 2500, 30))

	o := &domain.Order{UserID: u.ID, CertificateID: c.ID}
	if err := s.CreateOrder(ctx, o); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.ID == 0 {
		t.Fatal("expected generated id")
	}
	if o.Cost != 2500 {
		t.Fatalf("cost = %d, want certificate price 2500", o.Cost)
	}
	if o.PurchaseDate.IsZero() {
		t.Fatal("purchase date not stamped")
	}

	// The recorded cost is a snapshot: a later price change must not alter it.
	newPrice := int64(9999)
	if _, err := s.UpdateCertificate(ctx, c.ID, domain.CertificatePatch{Price: &newPrice}); err != nil {
		t.Fatalf("UpdateCertificate: %v", err)
	}
	got, err := s.GetUserOrder(ctx, u.ID, o.ID)
	if err != nil {
		t.Fatalf("GetUserOrder: %v", err)
	}
	if got.Cost != 2500 {
		t.Fatalf("cost after price change = %d, want 2500", got.Cost)
	}

	// Scoped lookup: another user's id hides the order.
	_, err = s.GetUserOrder(ctx, other.ID, o.ID)
	if !apperrors.Is(err, apperrors.ErrWrongOrderIDForUser) {
		t.Fatalf("foreign order lookup: got %v, want ErrWrongOrderIDForUser", err)
	}
	_, err = s.GetUserOrder(ctx, u.ID, 9999)
	if !apperrors.Is(err, apperrors.ErrWrongOrderIDForUser) {
		t.Fatalf("missing order lookup: got %v, want ErrWrongOrderIDForUser", err)
	}

	orders, err := s.ListUserOrders(ctx, u.ID, query.Page{})
	if err != nil {
		t.Fatalf("ListUserOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != o.ID {
		t.Fatalf("orders = %+v", orders)
	}
	orders, err = s.ListUserOrders(ctx, other.ID, query.Page{})
	if err != nil {
		t.Fatalf("ListUserOrders(other): %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("other user's orders = %+v, want none", orders)
	}
	_, err = s.ListUserOrders(ctx, 9999, query.Page{})
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("orders of missing user: got %v, want ErrWrongID", err)
	}

	// Orders referencing an unknown user or certificate are rejected.
	err = s.CreateOrder(ctx, &domain.Order{UserID: 9999, CertificateID: c.ID})
	if !apperrors.Is(err, apperrors.ErrWrongOrderFields) {
		t.Fatalf("order for missing user: got %v, want ErrWrongOrderFields", err)
	}
	err = s.CreateOrder(ctx, &domain.Order{UserID: u.ID, CertificateID: 9999})
	if !apperrors.Is(err, apperrors.ErrWrongOrderFields) {
		t.Fatalf("order for missing certificate: got %v, want ErrWrongOrderFields", err)
	}

	// Purchase history outlives the certificate: deleting it keeps the
	// order and its cost snapshot intact.
	if err := s.DeleteCertificate(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCertificate: %v", err)
	}
	orders, err = s.ListUserOrders(ctx, u.ID, query.Page{})
	if err != nil {
		t.Fatalf("ListUserOrders after certificate delete: %v", err)
	}
	if len(orders) != 1 || orders[0].Cost != 2500 || orders[0].CertificateID != c.ID {
		t.Fatalf("orders after certificate delete = %+v, want surviving order with cost 2500", orders)
	}
	if _, err := s.GetUserOrder(ctx, u.ID, o.ID); err != nil {
		t.Fatalf("GetUserOrder after certificate delete: %v", err)
	}
}

func testMostUsedTag(t *testing.T, f Factory) {
	s := f(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "collector", "collector@example.com")
	idle := mustCreateUser(t, s, "idle", "idle@example.com")

	// One order of cost 100 on a certificate tagged {A, B}, two orders of
	// cost 25 each on a certificate tagged {B}. A totals 100; B totals 150
	// and wins despite fewer tags per certificate.
	ab := mustCreateCertificate(t, s, newCertificate("dual", "tagged A and B", 100, 1, "A", "B"))
	b := mustCreateCertificate(t, s, newCertificate("single", "tagged B", 25, 1, "B"))

	if err := s.CreateOrder(ctx, &domain.Order{UserID: u.ID, CertificateID: ab.ID}); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.CreateOrder(ctx, &domain.Order{UserID: u.ID, CertificateID: b.ID}); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}

	tag, err := s.MostUsedTagForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("MostUsedTagForUser: %v", err)
	}
	if tag.Name != "B" {
		t.Fatalf("most used tag = %q, want B", tag.Name)
	}

	// A user with no qualifying orders is distinct from a missing user.
	_, err = s.MostUsedTagForUser(ctx, idle.ID)
	if !apperrors.Is(err, apperrors.ErrTagForUserNotFound) {
		t.Fatalf("user without orders: got %v, want ErrTagForUserNotFound", err)
	}
	_, err = s.MostUsedTagForUser(ctx, 9999)
	if !apperrors.Is(err, apperrors.ErrWrongID) {
		t.Fatalf("missing user: got %v, want ErrWrongID", err)
	}
}

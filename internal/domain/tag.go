package domain

// Tag is a reusable label attachable to many certificates.
// Names are globally unique; creating a duplicate-named tag is an error,
// while referencing an existing name from a certificate mutation resolves
// to the existing tag's id instead of failing.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

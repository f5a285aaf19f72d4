package domain

// User is a read-only account record. The server exposes no create or
// update path for users; they exist so orders have an owner.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

package domain

import "time"

// Order records a user purchasing a certificate. Cost is captured from the
// certificate's price at purchase time and never recomputed if the price
// later changes. PurchaseDate is server-assigned at creation.
type Order struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	CertificateID int64     `json:"gift_certificate_id"`
	Cost          int64     `json:"cost"`
	PurchaseDate  time.Time `json:"purchase_date"`
}

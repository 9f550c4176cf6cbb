package domain

import "time"

// BusinessProfile is a vendor storefront. A user owns at most one profile,
// and every product belongs to exactly one profile.
type BusinessProfile struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	BusinessName string    `json:"business_name"`
	Slug         string    `json:"slug"`
	CoverImage   string    `json:"cover_image,omitempty"`
	Email        string    `json:"email,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

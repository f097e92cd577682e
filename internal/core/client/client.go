package client

import "time"

// Client represents a sender who hands parcels to Parcelia for delivery.
type Client struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     *string    `json:"email"`
	Address   *string    `json:"address"`
	City      *string    `json:"city"`
	Notes     *string    `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // soft-delete tracker
}

// Filter holds the parameters for a paginated client search.
type Filter struct {
	Query string // Accent-insensitive match against name, also phone/email.
	City  string
}

const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldEmail = "email"
)

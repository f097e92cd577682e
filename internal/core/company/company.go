package company

import "time"

// Company represents a partner business whose parcels Parcelia distributes.
type Company struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     *string    `json:"email"`
	Address   *string    `json:"address"`
	City      *string    `json:"city"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// Filter holds the parameters for a paginated company search.
type Filter struct {
	Query string // Accent-insensitive match against name.
	City  string
}

const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldEmail = "email"
)

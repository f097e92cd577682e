package bon

import "time"

// Bon is a distribution voucher: the paper a courier carries for one run,
// grouping the parcels handed over for that tour.
type Bon struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CourierID *string   `json:"courier_id"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []*Item `json:"items,omitempty"`
}

// Item links one parcel to the voucher it travels on.
type Item struct {
	ColisID string    `json:"colis_id"`
	AddedAt time.Time `json:"added_at"`
}

// Filter holds the parameters for a paginated voucher search.
type Filter struct {
	Status    string
	CourierID string
}

const (
	FieldID        = "id"
	FieldStatus    = "status"
	FieldCourierID = "courier_id"
	FieldColisIDs  = "colis_ids"
)

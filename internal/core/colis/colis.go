package colis

import "time"

// Colis represents a parcel tracked through delivery.
//
// The ID is the human-assigned parcel code ("COL-2024-001"), used as the
// primary key. Status is free-form text validated against the dynamic
// status catalog on write; legacy values already on a parcel are tolerated
// on read.
type Colis struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Price     float64   `json:"price"`
	Fee       float64   `json:"fee"`
	Address   string    `json:"address"`
	Notes     *string   `json:"notes"`
	ClientID  string    `json:"client_id"`
	CompanyID *string   `json:"company_id"`
	CourierID *string   `json:"courier_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is one audit record of a status transition.
//
// Entries are append-only: created exactly once per status update, never
// mutated, deleted only as a cascade of parcel deletion. ActingUserName is
// resolved at read time and falls back to "Système" when the acting user
// record is gone.
type HistoryEntry struct {
	ID             string    `json:"id"`
	ColisID        string    `json:"colis_id"`
	Status         string    `json:"status"`
	Date           time.Time `json:"date"`
	ActingUserID   string    `json:"acting_user_id"`
	ActingUserName string    `json:"acting_user_name"`
}

// SystemActorLabel is the display fallback when a history entry's acting
// user can no longer be resolved.
const SystemActorLabel = "Système"

// Filter holds the parameters for a paginated parcel search.
type Filter struct {
	Query     string // Matches parcel code and delivery address.
	Status    string
	ClientID  string
	CourierID string
}

const (
	FieldID      = "id"
	FieldStatus  = "status"
	FieldPrice   = "price"
	FieldFee     = "fee"
	FieldAddress = "address"
	FieldClient  = "client_id"
)

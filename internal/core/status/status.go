package status

import "time"

// Status is one entry of the dynamic status catalog.
//
// The catalog is mutable configuration, never a hardcoded enum: admins
// add, recolor, reorder, and deactivate entries at runtime. Parcels and
// vouchers keep whatever status string they were given even if the
// catalog entry is later removed; consumers must render unknown values
// with a fallback badge instead of erroring.
type Status struct {
	ID         int       `json:"id"`
	EntityType string    `json:"entity_type"` // "colis" or "bon"
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	Position   int       `json:"position"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	FieldEntityType = "entity_type"
	FieldName       = "name"
	FieldColor      = "color"
	FieldPosition   = "position"
)

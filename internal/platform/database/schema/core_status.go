package schema

// StatusTable represents the 'core.status' table (the statut catalog).
//
// The catalog is mutable configuration: statuses are added, recolored, and
// deactivated by administrators at runtime, never hardcoded.
type StatusTable struct {
	Table      string
	ID         string
	EntityType string
	Name       string
	Color      string
	Position   string
	IsActive   string
	CreatedAt  string
	UpdatedAt  string
}

// Status is the schema definition for core.status
var Status = StatusTable{
	Table:      "core.status",
	ID:         "id",
	EntityType: "entitytype",
	Name:       "name",
	Color:      "color",
	Position:   "position",
	IsActive:   "isactive",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

package schema

// BonTable represents the 'core.bon' table (distribution vouchers).
type BonTable struct {
	Table     string
	ID        string
	Status    string
	CourierID string
	Notes     string
	CreatedAt string
	UpdatedAt string
}

// Bon is the schema definition for core.bon
var Bon = BonTable{
	Table:     "core.bon",
	ID:        "id",
	Status:    "status",
	CourierID: "courierid",
	Notes:     "notes",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// BonItemTable represents the 'core.bonitem' join table linking a voucher
// to the parcels on that courier run.
type BonItemTable struct {
	Table   string
	BonID   string
	ColisID string
	AddedAt string
}

// BonItem is the schema definition for core.bonitem
var BonItem = BonItemTable{
	Table:   "core.bonitem",
	BonID:   "bonid",
	ColisID: "colisid",
	AddedAt: "addedat",
}

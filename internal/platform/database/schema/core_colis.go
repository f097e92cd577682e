package schema

// ColisTable represents the 'core.colis' table.
//
// The primary key is the human-assigned parcel code ("COL-2024-001"),
// not a surrogate.
type ColisTable struct {
	Table     string
	ID        string
	Status    string
	Price     string
	Fee       string
	Address   string
	Notes     string
	ClientID  string
	CompanyID string
	CourierID string
	CreatedAt string
	UpdatedAt string
}

// Colis is the schema definition for core.colis
var Colis = ColisTable{
	Table:     "core.colis",
	ID:        "id",
	Status:    "status",
	Price:     "price",
	Fee:       "fee",
	Address:   "address",
	Notes:     "notes",
	ClientID:  "clientid",
	CompanyID: "companyid",
	CourierID: "courierid",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

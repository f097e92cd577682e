package schema

// ClientTable represents the 'core.client' table
type ClientTable struct {
	Table      string
	ID         string
	Name       string
	NameSearch string
	Phone      string
	Email      string
	Address    string
	City       string
	Notes      string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// Client is the schema definition for core.client
var Client = ClientTable{
	Table:      "core.client",
	ID:         "id",
	Name:       "name",
	NameSearch: "namesearch",
	Phone:      "phone",
	Email:      "email",
	Address:    "address",
	City:       "city",
	Notes:      "notes",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}

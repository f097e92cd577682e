package schema

// CompanyTable represents the 'core.company' table
type CompanyTable struct {
	Table      string
	ID         string
	Name       string
	NameSearch string
	Phone      string
	Email      string
	Address    string
	City       string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// Company is the schema definition for core.company
var Company = CompanyTable{
	Table:      "core.company",
	ID:         "id",
	Name:       "name",
	NameSearch: "namesearch",
	Phone:      "phone",
	Email:      "email",
	Address:    "address",
	City:       "city",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}

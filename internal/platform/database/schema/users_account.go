package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table       string
	ID          string
	AuthID      string
	Email       string
	Password    string
	Role        string
	IsVerified  string
	IsActive    string
	LastLoginAt string
	DisplayName string
	Phone       string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	AuthID:      "authid",
	Email:       "email",
	Password:    "passwordhash",
	Role:        "role",
	IsVerified:  "isverified",
	IsActive:    "isactive",
	LastLoginAt: "lastloginat",
	DisplayName: "displayname",
	Phone:       "phone",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.AuthID, t.Email, t.Password, t.Role, t.IsVerified,
		t.IsActive, t.LastLoginAt, t.DisplayName, t.Phone,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}

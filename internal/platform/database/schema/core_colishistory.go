package schema

// ColisHistoryTable represents the 'core.colishistory' table.
//
// Rows are append-only: one row per status transition, never updated,
// deleted only as part of the parcel cascade.
type ColisHistoryTable struct {
	Table        string
	ID           string
	ColisID      string
	Status       string
	Date         string
	ActingUserID string
}

// ColisHistory is the schema definition for core.colishistory
var ColisHistory = ColisHistoryTable{
	Table:        "core.colishistory",
	ID:           "id",
	ColisID:      "colisid",
	Status:       "status",
	Date:         "date",
	ActingUserID: "actinguserid",
}

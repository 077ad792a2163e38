package models

import "time"

// Account captures a registered chat identity and its linkage to an
// external spreadsheet. Timestamps are owned by the store.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PhoneNumber  string    `json:"phone_number"`
	SheetID      string    `json:"google_sheets_id"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Linked reports whether the account carries everything needed to sync
// expenses: a target spreadsheet and a Google refresh token.
func (a Account) Linked() bool {
	return a.SheetID != "" && a.RefreshToken != ""
}

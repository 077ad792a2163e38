package models

import "github.com/shopspring/decimal"

// ExpenseRecord is the structured result of one parsed chat message. It is
// never persisted locally; it lives only for the duration of one request,
// long enough to be mirrored into the user's spreadsheet.
type ExpenseRecord struct {
	Price    decimal.Decimal
	Product  string
	Category string
	// Date is stamped at parse time in dd/mm/yyyy form.
	Date string
	// Split marks a "(dividir)" message; the price is already halved.
	Split bool
}

// Package parser extracts structured expense records from free-form chat
// messages.
package parser

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gastobot/internal/models"
)

// ErrInvalidFormat rejects any message that does not match the expense
// grammar. The match is all-or-nothing against the whole trimmed line.
var ErrInvalidFormat = errors.New("invalid expense format")

// Grammar: <amount> <product...> <category> [(dividir)]. The amount uses a
// comma as decimal separator, the product is the shortest run between
// amount and category, and the category is a single token.
var pattern = regexp.MustCompile(`(?i)^(\d+(?:,\d+)?)\s+(.+?)\s+([\p{L}\p{N}_]+)(?:\s+\(dividir\))?$`)

const (
	dateLayout  = "02/01/2006"
	splitSuffix = "(dividir)"
)

var two = decimal.NewFromInt(2)

// Parser turns raw message text into expense records, stamping each record
// with the current calendar date.
type Parser struct {
	now func() time.Time
}

// New returns a parser using the wall clock.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewWithClock returns a parser with an injected clock.
func NewWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse matches the expense grammar against text. A "(dividir)" suffix
// halves the amount after parsing and sets the split flag.
func (p *Parser) Parse(text string) (models.ExpenseRecord, error) {
	line := strings.TrimSpace(text)
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return models.ExpenseRecord{}, ErrInvalidFormat
	}

	price, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil || !price.IsPositive() {
		return models.ExpenseRecord{}, ErrInvalidFormat
	}

	rec := models.ExpenseRecord{
		Price:    price,
		Product:  m[2],
		Category: m[3],
		Date:     p.now().Format(dateLayout),
	}
	if strings.HasSuffix(strings.ToLower(line), splitSuffix) {
		rec.Price = rec.Price.Div(two)
		rec.Split = true
	}
	return rec, nil
}

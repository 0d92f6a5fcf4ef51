package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type represents the budgeting granularity. The import engine only writes
// daily targets; weekly/monthly exist for the manual-edit path.
type Type string

const (
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
)

// CurrencyGBP is the fixed currency for imported budget targets.
const CurrencyGBP = "GBP"

var (
	ErrNotFound = errors.New("budget entry not found")
	ErrConflict = errors.New("budget entry already exists for this location, date and type")
)

// Entry is a per-location, per-day monetary target. At most one entry exists
// per (location, date, type); bulk import upserts on that key.
type Entry struct {
	ID         uuid.UUID
	LocationID uuid.UUID
	Date       time.Time // calendar date, UTC midnight, no time component
	Amount     int64     // minor currency units (pence)
	Currency   string
	Type       Type
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a non-empty amount cell into pence. Comma thousands
// separators are stripped ("5,000.50" -> 500050). Negative amounts are
// rejected; zero is a valid target (an explicitly closed day).
func ParseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}

	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount: %q", s)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

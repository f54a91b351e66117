package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// API amounts are JSON numbers, not strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Round2 rounds to the nearest cent, ties away from zero.
// Non-finite input yields 0.
func Round2(value float64) float64 {
	if !isFinite(value) {
		return 0
	}
	rounded, _ := decimal.NewFromFloat(value).Round(2).Float64()
	if rounded == 0 {
		return 0
	}
	return rounded
}

// ToFloat normalizes the numeric shapes found in payloads and database rows.
func ToFloat(value any) float64 {
	var out float64
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		out = v
	case float32:
		out = float64(v)
	case int:
		out = float64(v)
	case int32:
		out = float64(v)
	case int64:
		out = float64(v)
	case uint:
		out = float64(v)
	case uint32:
		out = float64(v)
	case uint64:
		out = float64(v)
	case decimal.Decimal:
		out = v.InexactFloat64()
	case *decimal.Decimal:
		if v == nil {
			return 0
		}
		out = v.InexactFloat64()
	case decimal.NullDecimal:
		if !v.Valid {
			return 0
		}
		out = v.Decimal.InexactFloat64()
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		out = parsed
	case string:
		out = parseString(v)
	case *float64:
		if v == nil {
			return 0
		}
		out = *v
	case fmt.Stringer:
		out = parseString(v.String())
	default:
		return 0
	}
	if !isFinite(out) {
		return 0
	}
	return out
}

// Decimal converts a float amount to a two-place decimal for storage.
func Decimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(Round2(value)).Round(2)
}

// Rate keeps four places, the precision of tariff rates.
func Rate(value float64) decimal.Decimal {
	if !isFinite(value) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value).Round(4)
}

func parseString(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

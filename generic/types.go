/*
Package generic provides the domain-agnostic building blocks of the planner.

PURPOSE:
  Calendar arithmetic, quantities and lenient numeric parsing that the
  workshop scheduler is built on. Nothing here knows about workers or
  projects.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identifiers: WorkerID, ProjectID, AssignmentID
  - ParseLenient: The single parse-or-zero coercion for upstream numbers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so hour chunks sum back exactly
  2. Total functions: Coercion never fails, malformed input becomes zero

USAGE:
  hours := generic.NonNegative(generic.ParseLenient("7.5"))
  value := generic.ParseLenient("£1,250.00") // 1250.00

SEE ALSO:
  - time.go: TimePoint and calendar helpers
  - period.go: Inclusive day ranges and summary bounds
*/
package generic

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string
type ProjectID string
type AssignmentID string

// =============================================================================
// LENIENT PARSING
// =============================================================================

// ParseLenient converts an upstream value into a decimal, returning zero for
// anything it cannot read. Strings have every character other than digits,
// '.' and '-' removed before parsing, so "£1,250.50" reads as 1250.50.
// Non-finite floats read as zero.
func ParseLenient(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case json.Number:
		return parseNumericString(string(x))
	case string:
		return parseNumericString(x)
	case *string:
		if x == nil {
			return decimal.Zero
		}
		return parseNumericString(*x)
	case *float64:
		if x == nil {
			return decimal.Zero
		}
		return fromFloat(*x)
	default:
		return parseNumericString(fmt.Sprint(x))
	}
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseNumericString(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

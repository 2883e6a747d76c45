// Package field models optional numeric form inputs. Intake forms carry
// area and value fields as free text; a value may be absent, invalid, or
// a usable number, and the three cases must stay distinguishable all the
// way to submit — silently coercing bad input to zero would corrupt the
// record.
package field

import (
	"fmt"
	"strconv"
	"strings"
)

// State tags the three possible conditions of a parsed decimal input.
type State int

const (
	// Unset means the input was empty: the field was simply left blank.
	Unset State = iota
	// Invalid means the input was non-empty but did not parse.
	Invalid
	// Value means the input parsed to a usable number.
	Value
)

// Decimal is the parsed form of an optional numeric text input. The zero
// value is Unset. Construct with Parse; inspect with State, Float, and
// Reason.
type Decimal struct {
	state  State
	value  float64
	raw    string
	reason string
}

// Parse interprets a free-text numeric input. Whitespace-only input is
// Unset. A decimal comma is accepted alongside the decimal point, since
// the forms are filled in Portuguese locales ("120,50" ≡ "120.50").
// Anything else non-empty that fails to parse is Invalid with a reason.
func Parse(text string) Decimal {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Decimal{state: Unset}
	}
	normalized := strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return Decimal{
			state:  Invalid,
			raw:    raw,
			reason: fmt.Sprintf("%q is not a number", raw),
		}
	}
	return Decimal{state: Value, value: v, raw: raw}
}

// State returns the tag for this input.
func (d Decimal) State() State { return d.state }

// Float returns the parsed number and whether one is present.
func (d Decimal) Float() (float64, bool) {
	return d.value, d.state == Value
}

// Ptr returns the parsed number as a nullable pointer: nil for Unset or
// Invalid. This is the shape the persistence payload wants.
func (d Decimal) Ptr() *float64 {
	if d.state != Value {
		return nil
	}
	v := d.value
	return &v
}

// Raw returns the original trimmed input text.
func (d Decimal) Raw() string { return d.raw }

// Reason returns the human-readable parse failure, empty unless Invalid.
func (d Decimal) Reason() string { return d.reason }

// FromFloat wraps an already-known number, used when hydrating a form
// from a persisted record.
func FromFloat(v *float64) Decimal {
	if v == nil {
		return Decimal{state: Unset}
	}
	return Decimal{state: Value, value: *v, raw: strconv.FormatFloat(*v, 'f', -1, 64)}
}

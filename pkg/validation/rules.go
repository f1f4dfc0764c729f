// Package validation implements the wallet form rules: numeric amount checks,
// the per-field rule table and message rendering.
package validation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Rule messages returned by the numeric rules
const (
	MsgOnlyNumbers   = "You can add only numbers"
	MsgDecimalPlaces = "Must be a valid decimal (up to 4 digits)"
	MsgPositiveOnly  = "Use only positive numbers"
	MsgMinAmount     = "Amount must be at least $0.0001"
	MsgMaxAmount     = "Amount cannot exceed $999,999.99"
)

var (
	minAmount = decimal.RequireFromString("0.0001")
	maxAmount = decimal.RequireFromString("999999.99")

	numericChars  = regexp.MustCompile(`^-?\d*\.?\d*$`)
	decimalFormat = regexp.MustCompile(`^-?\d+(\.\d{1,4})?$`)
)

// Mode selects how AmountValidation treats small values.
type Mode int

const (
	// GenericAmount is used for transaction amounts and enforces the minimum.
	GenericAmount Mode = iota
	// InitialBalance is used for a new wallet's starting balance, which may be zero.
	InitialBalance
)

func (m Mode) String() string {
	if m == InitialBalance {
		return "initialBalance"
	}
	return "genericAmount"
}

// Result is the outcome of a single rule: valid, or invalid with a message.
type Result struct {
	message string
	invalid bool
}

// Valid returns a passing result.
func Valid() Result { return Result{} }

// Invalid returns a failing result with the given message.
func Invalid(message string) Result { return Result{message: message, invalid: true} }

// OK reports whether the value passed.
func (r Result) OK() bool { return !r.invalid }

// Message is the rejection reason; empty for valid results.
func (r Result) Message() string { return r.message }

func (r Result) String() string {
	if r.OK() {
		return "valid"
	}
	return "invalid: " + r.message
}

// Decimal accepts an optionally negative integer or decimal with at most four
// fractional digits. Empty values are valid.
func Decimal(value string) Result {
	if value == "" {
		return Valid()
	}
	if !numericChars.MatchString(value) {
		return Invalid(MsgOnlyNumbers)
	}
	if !decimalFormat.MatchString(value) {
		return Invalid(MsgDecimalPlaces)
	}
	return Valid()
}

// PositiveNumber accepts any non-negative number. Empty values are valid.
func PositiveNumber(value string) Result {
	if value == "" {
		return Valid()
	}
	n, ok := parseNumber(value)
	if !ok {
		return Invalid(MsgOnlyNumbers)
	}
	if n.value.IsNegative() {
		return Invalid(MsgPositiveOnly)
	}
	return Valid()
}

// AmountValidation checks a monetary amount. Magnitude is checked before
// precision, so 0.000001 is reported as below the minimum rather than as having
// too many digits. In InitialBalance mode the minimum does not apply.
func AmountValidation(value string, mode Mode) Result {
	if value == "" {
		return Valid()
	}
	n, ok := parseNumber(value)
	if !ok {
		return Invalid(MsgOnlyNumbers)
	}
	if n.value.IsNegative() {
		return Invalid(MsgPositiveOnly)
	}
	if mode != InitialBalance && n.value.LessThan(minAmount) {
		return Invalid(MsgMinAmount)
	}
	if n.value.GreaterThan(maxAmount) {
		return Invalid(MsgMaxAmount)
	}
	if !n.wellFormed() {
		return Invalid(MsgDecimalPlaces)
	}
	return Valid()
}

type number struct {
	value    decimal.Decimal
	whole    string
	frac     string
	hasPoint bool
}

// wellFormed reports whether the literal had digits on both sides of the point
// and no more than four fractional digits.
func (n number) wellFormed() bool {
	if n.whole == "" {
		return false
	}
	if !n.hasPoint {
		return true
	}
	return len(n.frac) >= 1 && len(n.frac) <= 4
}

// parseNumber reads a plain decimal literal: optional minus, digits, at most one
// point. Literals like "5." or ".5" parse but are not well formed.
func parseNumber(value string) (number, bool) {
	if !numericChars.MatchString(value) {
		return number{}, false
	}
	unsigned := strings.TrimPrefix(value, "-")
	whole, frac, hasPoint := strings.Cut(unsigned, ".")
	if whole == "" && frac == "" {
		return number{}, false
	}

	literal := whole
	if literal == "" {
		literal = "0"
	}
	if frac != "" {
		literal += "." + frac
	}
	if strings.HasPrefix(value, "-") {
		literal = "-" + literal
	}

	d, err := decimal.NewFromString(literal)
	if err != nil {
		return number{}, false
	}
	return number{value: d, whole: whole, frac: frac, hasPoint: hasPoint}, true
}

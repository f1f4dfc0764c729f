package validation

import (
	"strings"
)

// Rule names understood by the validator
const (
	RuleRequired       = "required"
	RuleMin            = "min"
	RuleMax            = "max"
	RuleMinValue       = "min_value"
	RuleMaxValue       = "max_value"
	RuleDecimal        = "decimal"
	RulePositiveNumber = "positiveNumber"
	RuleAmount         = "amountValidation"
	RuleAlphaSpaces    = "alpha_spaces"
	RuleEmail          = "email"
	RuleConfirmed      = "confirmed"
)

// Form field keys
const (
	FieldWalletName      = "walletName"
	FieldBalance         = "balance"
	FieldAmount          = "amount"
	FieldDescription     = "description"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// Schema names
const (
	SchemaWalletSetup      = "walletSetup"
	SchemaTransaction      = "transaction"
	SchemaUserRegistration = "userRegistration"
)

// Rule is one step of a field pipeline, e.g. "min:2" is {Name: "min", Params: ["2"]}.
type Rule struct {
	Name   string
	Params []string
}

// ParseRules splits a pipe separated rule string into its steps.
func ParseRules(spec string) []Rule {
	var rules []Rule
	for _, part := range strings.Split(spec, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, args, found := strings.Cut(part, ":")
		rule := Rule{Name: name}
		if found && args != "" {
			rule.Params = strings.Split(args, ",")
		}
		rules = append(rules, rule)
	}
	return rules
}

// RuleTable maps form fields to their rule strings and groups fields into
// schemas. It has no mutators; build it once and share it.
type RuleTable struct {
	fields  map[string]string
	schemas map[string][]string
}

// DefaultRules returns the wallet form rule table.
func DefaultRules() RuleTable {
	return RuleTable{
		fields: map[string]string{
			FieldWalletName:      "required|min:2|max:50|alpha_spaces",
			FieldBalance:         "amountValidation:initialBalance",
			FieldAmount:          "required|amountValidation",
			FieldDescription:     "required|min:3|max:100",
			FieldEmail:           "required|email",
			FieldPassword:        "required|min:8|max:50",
			FieldConfirmPassword: "required|confirmed:@password",
		},
		schemas: map[string][]string{
			SchemaWalletSetup:      {FieldWalletName, FieldBalance},
			SchemaTransaction:      {FieldAmount, FieldDescription},
			SchemaUserRegistration: {FieldEmail, FieldPassword, FieldConfirmPassword},
		},
	}
}

// GetFieldRule returns the rule string of field.
func (t RuleTable) GetFieldRule(field string) (string, bool) {
	rule, ok := t.fields[field]
	return rule, ok
}

// IsFieldRequired reports whether the field's rule string contains "required".
func (t RuleTable) IsFieldRequired(field string) bool {
	rule, ok := t.fields[field]
	return ok && strings.Contains(rule, RuleRequired)
}

// Pipeline returns the parsed rule steps of field.
func (t RuleTable) Pipeline(field string) ([]Rule, bool) {
	rule, ok := t.fields[field]
	if !ok {
		return nil, false
	}
	return ParseRules(rule), true
}

// Schema returns a copy of the field list of a named schema.
func (t RuleTable) Schema(name string) ([]string, bool) {
	fields, ok := t.schemas[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), fields...), true
}

var defaultRules = DefaultRules()

// GetFieldRule returns the default rule string of field, or "" if it has none.
func GetFieldRule(field string) string {
	rule, _ := defaultRules.GetFieldRule(field)
	return rule
}

// IsFieldRequired reports whether field is required in the default table.
func IsFieldRequired(field string) bool {
	return defaultRules.IsFieldRequired(field)
}

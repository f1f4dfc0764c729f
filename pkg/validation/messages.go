package validation

import (
	"fmt"
)

var fieldNames = map[string]string{
	FieldWalletName:      "Wallet name",
	FieldBalance:         "Balance",
	FieldAmount:          "Amount",
	FieldDescription:     "Description",
	FieldEmail:           "Email",
	FieldPassword:        "Password",
	FieldConfirmPassword: "Confirm password",
}

var messageTemplates = map[string]func(name string, params []string) string{
	RuleRequired: func(name string, _ []string) string {
		return name + " is required field"
	},
	RuleMin: func(name string, p []string) string {
		return fmt.Sprintf("%s must be at least %s characters", name, param(p, 0))
	},
	RuleMax: func(name string, p []string) string {
		return fmt.Sprintf("%s must be no more than %s characters", name, param(p, 0))
	},
	RuleMinValue: func(name string, p []string) string {
		return fmt.Sprintf("%s must be at least %s", name, param(p, 0))
	},
	RuleMaxValue: func(name string, p []string) string {
		return fmt.Sprintf("%s must be no more than %s", name, param(p, 0))
	},
	RuleDecimal: func(name string, _ []string) string {
		return name + " must be a valid decimal (up to 4 digits)"
	},
	RulePositiveNumber: func(name string, _ []string) string {
		return name + " must be a positive number"
	},
	RuleAmount: func(name string, _ []string) string {
		return name + " is invalid"
	},
	RuleAlphaSpaces: func(name string, _ []string) string {
		return name + " may only contain alphabetic characters and spaces"
	},
	RuleEmail: func(name string, _ []string) string {
		return name + " must be a valid email"
	},
	RuleConfirmed: func(name string, _ []string) string {
		return name + " confirmation does not match"
	},
}

// FieldName returns the display name of a field key, or the key itself.
func FieldName(field string) string {
	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

// FallbackMessage is rendered for rules without a template. It reads as a
// missing-value message even when the failing rule was something else.
func FallbackMessage(field string) string {
	return FieldName(field) + " is required field"
}

// RenderMessage builds the message shown when rule fails for field.
func RenderMessage(field, rule string, params []string) string {
	tmpl, ok := messageTemplates[rule]
	if !ok {
		return FallbackMessage(field)
	}
	return tmpl(FieldName(field), params)
}

func param(params []string, i int) string {
	if i < len(params) {
		return params[i]
	}
	return ""
}

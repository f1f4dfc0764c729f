package validation

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var alphaSpacesRegex = regexp.MustCompile(`^[\p{L}\s]+$`)

// Form holds raw form input keyed by field.
type Form map[string]string

// FieldErrors maps each failing field to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fe[field])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Validator runs field rule pipelines from a RuleTable
type Validator struct {
	rules     RuleTable
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewValidator creates a validator over the given rule table
func NewValidator(rules RuleTable, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterValidation(RuleAlphaSpaces, func(fl validator.FieldLevel) bool {
		return alphaSpacesRegex.MatchString(fl.Field().String())
	})

	return &Validator{
		rules:     rules,
		validator: v,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// Rules returns the table the validator was built with.
func (v *Validator) Rules() RuleTable {
	return v.rules
}

// ValidateField runs the pipeline of field against value and stops at the first
// failing rule. Rules other than "required" let empty values through. form
// supplies the other fields for cross-field rules; it may be nil.
func (v *Validator) ValidateField(field, value string, form Form) Result {
	pipeline, ok := v.rules.Pipeline(field)
	if !ok {
		return Valid()
	}
	for _, rule := range pipeline {
		if rule.Name != RuleRequired && value == "" {
			continue
		}
		if res := v.check(field, value, rule, form); !res.OK() {
			return res
		}
	}
	return Valid()
}

// ValidateSchema validates every field of a named schema. It returns
// FieldErrors when any field fails.
func (v *Validator) ValidateSchema(schema string, form Form) error {
	fields, ok := v.rules.Schema(schema)
	if !ok {
		return fmt.Errorf("unknown validation schema %q", schema)
	}

	errs := FieldErrors{}
	for _, field := range fields {
		if res := v.ValidateField(field, form[field], form); !res.OK() {
			errs[field] = res.Message()
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Sanitize strips markup from free text and trims surrounding space.
func (v *Validator) Sanitize(value string) string {
	if value == "" {
		return value
	}
	return strings.TrimSpace(html.UnescapeString(v.sanitizer.Sanitize(value)))
}

func (v *Validator) check(field, value string, rule Rule, form Form) Result {
	fail := Invalid(RenderMessage(field, rule.Name, rule.Params))

	switch rule.Name {
	case RuleRequired:
		if v.validator.Var(strings.TrimSpace(value), "required") != nil {
			return fail
		}
	case RuleMin, RuleMax:
		limit := param(rule.Params, 0)
		if _, err := strconv.Atoi(limit); err != nil {
			v.logger.Warn("Malformed length rule", zap.String("field", field), zap.String("rule", rule.Name))
			return fail
		}
		if v.validator.Var(value, rule.Name+"="+limit) != nil {
			return fail
		}
	case RuleAlphaSpaces, RuleEmail:
		if v.validator.Var(value, rule.Name) != nil {
			return fail
		}
	case RuleMinValue, RuleMaxValue:
		n, ok := parseNumber(value)
		bound, err := decimal.NewFromString(param(rule.Params, 0))
		if !ok || err != nil {
			return fail
		}
		if rule.Name == RuleMinValue && n.value.LessThan(bound) {
			return fail
		}
		if rule.Name == RuleMaxValue && n.value.GreaterThan(bound) {
			return fail
		}
	case RuleConfirmed:
		other := strings.TrimPrefix(param(rule.Params, 0), "@")
		if value != form[other] {
			return fail
		}
	case RuleDecimal:
		return Decimal(value)
	case RulePositiveNumber:
		return PositiveNumber(value)
	case RuleAmount:
		mode := GenericAmount
		if param(rule.Params, 0) == InitialBalance.String() {
			mode = InitialBalance
		}
		return AmountValidation(value, mode)
	default:
		v.logger.Warn("Unknown validation rule", zap.String("field", field), zap.String("rule", rule.Name))
		return fail
	}
	return Valid()
}

package forms

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailShape accepts anything resembling local@domain.tld.
var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	return v
}

// Rule is a single predicate applied to one field.
type Rule struct {
	Tag     string
	Param   string
	Message string
	Numeric bool
}

// Rules maps field names to their ordered rule list. The first failing rule
// reports the field error.
type Rules map[string][]Rule

// Required rejects blank values.
func Required(msg string) Rule {
	return Rule{Tag: "required", Message: msg}
}

// NonNegative accepts numbers >= 0.
func NonNegative(msg string) Rule {
	return Rule{Tag: "gte", Param: "0", Message: msg, Numeric: true}
}

// Positive accepts numbers > 0.
func Positive(msg string) Rule {
	return Rule{Tag: "gt", Param: "0", Message: msg, Numeric: true}
}

// MinInt accepts numbers >= min.
func MinInt(min int, msg string) Rule {
	return Rule{Tag: "gte", Param: strconv.Itoa(min), Message: msg, Numeric: true}
}

// Email checks the loose address shape used across the panel.
func Email(msg string) Rule {
	return Rule{Tag: "emailshape", Message: msg}
}

// OneOf restricts the value to the listed options.
func OneOf(msg string, options ...string) Rule {
	return Rule{Tag: "oneof", Param: strings.Join(options, " "), Message: msg}
}

// Date accepts YYYY-MM-DD.
func Date(msg string) Rule {
	return Rule{Tag: "datetime", Param: "2006-01-02", Message: msg}
}

func (r Rule) check(value string) bool {
	if r.Tag == "required" {
		return value != ""
	}
	// Optional fields only get checked when filled in.
	if value == "" {
		return true
	}
	tag := r.Tag
	if r.Param != "" {
		tag += "=" + r.Param
	}
	if r.Numeric {
		n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err != nil {
			return false
		}
		return validate.Var(n, tag) == nil
	}
	return validate.Var(value, tag) == nil
}

// Errors maps field names to a user-facing message.
type Errors map[string]string

// Any reports whether at least one field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Fields lists the failing field names in stable order.
func (e Errors) Fields() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate applies rules to values. It never mutates values and returns an
// empty map when every rule passes.
func Validate(values Values, rules Rules) Errors {
	errs := Errors{}
	for field, list := range rules {
		value := strings.TrimSpace(values.Get(field))
		for _, rule := range list {
			if !rule.check(value) {
				errs[field] = rule.Message
				break
			}
		}
	}
	return errs
}

// ValidationError carries field errors detected before any request is made.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Fields.Fields(), ", ")
}

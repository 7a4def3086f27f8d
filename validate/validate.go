package validate

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is returned when one or more fields fail validation
type ErrInvalidInput struct {
	Parameters []string
	Reasons    []string
}

func (e ErrInvalidInput) Error() string {
	str := "invalid input:\n"

	for i := range e.Parameters {
		str += fmt.Sprintf("    parameter: %s, reason: %s\n", e.Parameters[i], e.Reasons[i])
	}

	return str
}

// NewErrInvalidInput is a shorthand for a single failed parameter
func NewErrInvalidInput(parameter, reason string) ErrInvalidInput {
	return ErrInvalidInput{Parameters: []string{parameter}, Reasons: []string{reason}}
}

// ValWithTags pairs a value with the validator tags it must satisfy
type ValWithTags struct {
	value interface{}
	tag   string
}

func WithTag(value interface{}, tag string) ValWithTags {
	return ValWithTags{value: value, tag: tag}
}

type ValidationMap map[string]ValWithTags

// ValidateFields runs each field through the validator and collects every failure into a single
// ErrInvalidInput. Fields are checked in name order so errors are stable.
func ValidateFields(validator *validator.Validate, fields ValidationMap) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	validationErr := ErrInvalidInput{}
	foundErrors := false

	for _, name := range names {
		field := fields[name]
		if err := validator.Var(field.value, field.tag); err != nil {
			foundErrors = true
			validationErr.Parameters = append(validationErr.Parameters, name)
			validationErr.Reasons = append(validationErr.Reasons, err.Error())
		}
	}

	if foundErrors {
		return validationErr
	}

	return nil
}

// WithCustomValidators returns a validator with this service's custom tags registered
func WithCustomValidators() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("not_blank", NotBlankValidator)
	v.RegisterValidation("notification_type", NotificationTypeValidator)

	return v
}

// NotBlankValidator fails strings that are empty after trimming whitespace
func NotBlankValidator(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// NotificationTypeValidator accepts an empty string or one of the known notification types
func NotificationTypeValidator(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(field.String())) {
	case "", "comment", "reply", "thumb", "favour", "system":
		return true
	default:
		return false
	}
}

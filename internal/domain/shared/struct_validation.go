package shared

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CodeInvalidField is the report code of a struct tag violation
const CodeInvalidField = "INVALID_FIELD"

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getStructValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Use JSON tag names for field paths
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Nil UUIDs read as empty so that `required` rejects them
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			id, ok := field.Interface().(uuid.UUID)
			if !ok || id == uuid.Nil {
				return ""
			}
			return id.String()
		}, uuid.UUID{})

		// Decimals are validated from their exact string form
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			d, ok := field.Interface().(decimal.Decimal)
			if !ok {
				return ""
			}
			return d.String()
		}, decimal.Decimal{})

		_ = v.RegisterValidation("dec_gt0", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && d.IsPositive()
		})
		_ = v.RegisterValidation("dec_gte0", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative()
		})

		structValidator = v
	})
	return structValidator
}

// ValidateStruct checks `validate` tags and reports each violation as an
// INVALID_FIELD error whose path is the JSON field name.
func ValidateStruct(s any) ValidationReport {
	report := NewValidationReport()
	err := getStructValidator().Struct(s)
	if err == nil {
		return report
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		report.AddError(CodeInvalidField, "", "%s", err.Error())
		return report
	}
	for _, fe := range fieldErrs {
		report.AddError(CodeInvalidField, fieldPath(fe), "%s", fieldMessage(fe))
	}
	return report
}

// fieldPath strips the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gtfield":
		return "Must be after " + e.Param()
	case "dec_gt0":
		return "Must be a positive amount"
	case "dec_gte0":
		return "Must not be negative"
	case "dive":
		return "Invalid element"
	default:
		return "Invalid value"
	}
}

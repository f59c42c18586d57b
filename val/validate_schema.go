package val

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
)

// ValidateSchema validates schema with the shared validator. Failures are
// reported as errx fields keyed by the dotted tag path below the root struct,
// e.g. "phone_code.code".
func ValidateSchema(schema any) error {
	err := getValidator().Struct(schema)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errx.New(
			fmt.Sprintf("Unknown validation error: %s", err.Error()),
			errx.WithCode(CodeValidationFailed),
			errx.WithType(errx.T_Validation),
		)
	}

	fields := make(errx.M, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldPath(fieldErr)] = describe(fieldErr)
	}

	return errx.New(
		"Validation failed. See fields for details.",
		errx.WithCode(CodeValidationFailed),
		errx.WithType(errx.T_Validation),
		errx.WithFields(fields),
	)
}

// fieldPath drops the root struct name from the error namespace.
func fieldPath(fieldErr validator.FieldError) string {
	ns := fieldErr.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fieldErr.Field()
}

//nolint:gochecknoglobals // static lookup
var descriptions = map[string]string{
	"required":         "This field is required",
	"numeric":          "Must contain only digits",
	"uuid":             "Must be a valid UUID",
	"latitude":         "Must be a valid latitude",
	"longitude":        "Must be a valid longitude",
	"iso3166_1_alpha2": "Must be a valid ISO 3166-1 alpha-2 country code",
	"iso3166_1_alpha3": "Must be a valid ISO 3166-1 alpha-3 country code",
	"phone_code":       "Must be an international dialling code of 1 to 4 digits",
}

func describe(fieldErr validator.FieldError) string {
	tag, param := fieldErr.Tag(), fieldErr.Param()
	isString := fieldErr.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", param)
		}
		return fmt.Sprintf("Must be at least %s", param)
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", param)
		}
		return fmt.Sprintf("Must be at most %s", param)
	case "len":
		if isString {
			return fmt.Sprintf("Must be exactly %s characters", param)
		}
		return fmt.Sprintf("Must have exactly %s items", param)
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", param)
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", param)
	case "gt":
		return fmt.Sprintf("Must be greater than %s", param)
	case "lt":
		return fmt.Sprintf("Must be less than %s", param)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	case "startswith":
		return fmt.Sprintf("Must start with %q", param)
	}

	if desc, ok := descriptions[tag]; ok {
		return desc
	}
	return fmt.Sprintf("Failed validation: %s", tag)
}

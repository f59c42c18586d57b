package val

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var phoneCodeRe = regexp.MustCompile(`^[0-9]{1,4}$`) //nolint: gochecknoglobals // compiled once

// IsPhoneCode checks if the provided value is an international dialling code
// without the leading symbol, e.g. "998" or "1".
func IsPhoneCode(code string) bool {
	return phoneCodeRe.MatchString(code)
}

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("phone_code", func(fl validator.FieldLevel) bool {
		return IsPhoneCode(fl.Field().String())
	})
}

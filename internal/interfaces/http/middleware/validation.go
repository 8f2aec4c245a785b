package middleware

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding validations on gin's
// validator engine. Call once at startup.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("pricetext", priceText)
}

// priceText accepts price strings in either separator convention,
// with optional currency junk ("19,99", "1.299,00", "€ 24.50"). The
// normalizer downstream defaults garbage to zero, so validation only
// rejects strings carrying no digits at all.
func priceText(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

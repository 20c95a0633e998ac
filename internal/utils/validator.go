// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("eth_address", validateAddress)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// validateAddress accepts a checksummed or lowercase 20-byte hex address.
func validateAddress(fl validator.FieldLevel) bool {
	return addressPattern.MatchString(fl.Field().String())
}

// NormalizeAddress lowercases an address so ledger keys compare equal
// regardless of checksum casing.
func NormalizeAddress(addr string) string {
	return strings.ToLower(addr)
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "eth_address":
		return e.Field() + " must be a 0x-prefixed 40-hex-digit address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}

package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// purchaseRequest is the body of an upgrade purchase.
type purchaseRequest struct {
	Quantity string `json:"quantity" validate:"required,oneof=1 10 100 1000 max"`
}

// importRequest carries an export string or raw snapshot JSON.
type importRequest struct {
	Save string `json:"save" validate:"required,max=1048576"`
}

var validate = validator.New()

// formatValidationError turns validator output into a field → message map
// without leaking struct names.
func formatValidationError(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "oneof":
			errs[field] = "Must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
		case "max":
			errs[field] = "Too long"
		default:
			errs[field] = "Invalid value"
		}
	}
	return errs
}

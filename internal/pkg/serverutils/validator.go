package serverutils

import (
	"fmt"
	"strings"

	"arcana-be/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into
// a VALIDATION error the error handler maps to 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperr.Wrap(apperr.KindValidation, "invalid request", err)
		}
		var parts []string
		for _, fe := range validationErrors {
			parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		return apperr.New(apperr.KindValidation, strings.Join(parts, "; "))
	}
	return nil
}

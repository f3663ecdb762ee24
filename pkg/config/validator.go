package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/compozy/clear-comments/engine/stripper"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("directive", validateDirective)
}

// validateDirective accepts the comment directive vocabulary
func validateDirective(fl validator.FieldLevel) bool {
	_, err := stripper.ParseDirective(fl.Field().String())
	return err == nil
}

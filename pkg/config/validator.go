package config

import (
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("page_size", validatePageSize); err != nil {
		return err
	}
	return v.RegisterValidation("viewer_role", validateViewerRole)
}

func validatePageSize(fl validator.FieldLevel) bool {
	switch fl.Field().Int() {
	case 10, 20, 30, 40, 50:
		return true
	}
	return false
}

func validateViewerRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "user", "admin", "superAdmin":
		return true
	}
	return false
}

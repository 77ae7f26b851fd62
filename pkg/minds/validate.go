package minds

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mindsdb/minds-go/pkg/apperrors"
)

var (
	validateOnce    sync.Once
	structValidator *validator.Validate
)

// v returns the shared validator. Field names in its errors are the json names.
func v() *validator.Validate {
	validateOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structValidator
}

// ValidateName fails when name is empty. field names the argument in the error.
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.ErrMissingRequiredAttribute(field, name)
	}
	return nil
}

// ValidateNonEmptyList fails when items is nil or empty.
func ValidateNonEmptyList[T any](items []T, label string) error {
	if len(items) == 0 {
		return apperrors.ErrEmptyList(label, "at least one is required")
	}
	return nil
}

// ValidateDatabaseConfig checks the name, then reports every other missing required field
// of cfg by its json name.
func ValidateDatabaseConfig(cfg DatabaseConfig) error {
	if err := ValidateName("name", cfg.Name); err != nil {
		return err
	}
	err := v().Struct(cfg)
	if err == nil {
		return nil
	}
	validatorErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.ErrValidation.MsgErr("unable to validate datasource", err)
	}
	var validationErrors apperrors.ValidationErrors
	for _, e := range validatorErrors {
		switch e.Tag() {
		case "required", "min":
			validationErrors = append(validationErrors, apperrors.ErrMissingRequiredAttribute(e.Field(), e.Value()))
		default:
			validationErrors = append(validationErrors, apperrors.ValidationError{
				Field:  e.Field(),
				Value:  e.Value(),
				ErrStr: "failed " + e.Tag() + " validation",
			})
		}
	}
	return validationErrors
}

func validateMindRequest(r CreateMindRequest) error {
	if err := ValidateName("name", r.Name); err != nil {
		return err
	}
	return ValidateNonEmptyList(r.Datasources, "datasources")
}

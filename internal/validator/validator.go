// Package validator provides request validation using go-playground/validator.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"classichub-service/internal/domain"
)

// Validator wraps the go-playground validator with the hub's custom tags.
type Validator struct {
	v *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Message
	}

	return strings.Join(msgs, "; ")
}

// New creates a Validator that reports fields by their query or json name
// and knows the tags category, perfstatus and yyyymmdd.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			if name != "" {
				return name
			}
		}

		return fld.Name
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.ArtistCategory(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("perfstatus", func(fl validator.FieldLevel) bool {
		return domain.PerformanceStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("yyyymmdd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.QueryDateLayout, fl.Field().String())

		return err == nil
	})

	return &Validator{v: v}
}

// Validate checks i and returns ValidationErrors when a rule fails.
func (v *Validator) Validate(i interface{}) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Value:   fmt.Sprintf("%v", e.Value()),
			Message: message(e),
		})
	}

	return errs
}

func message(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "category":
		return fmt.Sprintf("%s must be one of: conductor performer composer", field)
	case "perfstatus":
		return fmt.Sprintf("%s must be one of: upcoming running completed", field)
	case "yyyymmdd":
		return fmt.Sprintf("%s must be a date like 20250512", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// InitializeValidators registers custom validation rules with Gin's binding engine.
// Safe to call more than once; registration happens on the first call.
// Panics if validator registration fails, as this is a critical configuration error.
func InitializeValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		// Report JSON field names instead of Go struct field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		if err := v.RegisterValidation("notblank", notBlankValidator); err != nil {
			panic(fmt.Sprintf("Failed to register notblank validator: %v", err))
		}
	})
}

// notBlankValidator validates that a string field is not empty or whitespace-only.
func notBlankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// formatBindingError converts a binding failure into one caller-facing sentence.
func formatBindingError(err error) string {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit)
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "body must be a JSON object"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required", "notblank":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s cannot exceed %s characters", field, e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed validation (%s)", field, e.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}

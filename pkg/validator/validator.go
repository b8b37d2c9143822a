// Package validator plugs go-playground/validator into echo so handlers
// can call c.Validate on bound request DTOs and rely on their `validate`
// tags.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator satisfies echo.Validator
type CustomValidator struct {
	validate *validator.Validate
}

// New builds the validator the echo instance is configured with at startup
func New() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate checks the struct tags of a bound request DTO
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

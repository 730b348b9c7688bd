package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// validateEndpoint requires an absolute http(s) URL.
func validateEndpoint(errs *ValidationErrors, field, value string) {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs.Add(field, "must be an absolute http or https URL", value)
	}
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var errs ValidationErrors

	if err := ValidateOneOf("storage.driver", c.Storage.Driver, []string{StorageDriverFile, StorageDriverSQLite}); err != nil {
		errs = append(errs, err.(ValidationError))
	}

	validateEndpoint(&errs, "oauth.authorizeEndpoint", c.OAuth.AuthorizeEndpoint)
	validateEndpoint(&errs, "oauth.tokenEndpoint", c.OAuth.TokenEndpoint)

	if c.OAuth.CallbackPort < 1 || c.OAuth.CallbackPort > 65535 {
		errs.Add("oauth.callbackPort", "must be between 1 and 65535", c.OAuth.CallbackPort)
	}
	if !strings.HasPrefix(c.OAuth.CallbackPath, "/") {
		errs.Add("oauth.callbackPath", "must start with '/'", c.OAuth.CallbackPath)
	}
	if c.OAuth.TokenTTL <= 0 {
		errs.Add("oauth.tokenTTL", "must be positive", c.OAuth.TokenTTL)
	}
	if c.OAuth.HTTPTimeout <= 0 {
		errs.Add("oauth.httpTimeout", "must be positive", c.OAuth.HTTPTimeout)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

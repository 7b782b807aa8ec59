package utils

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chamberirc/chamberbnc/internal/shared/errors"
)

var validate = newValidator()

// newValidator reports failures under their configuration keys rather than
// Go field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks s against its validate tags and reports every
// failing field in a single ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = getFieldErrorMessage(fe)
	}
	return errors.NewValidationError("Validation failed", strings.Join(msgs, "; "))
}

// fieldMessages maps a validator tag to its message; %[1]s is the config
// key and %[2]s the tag parameter.
var fieldMessages = map[string]string{
	"required":         "%[1]s is required",
	"email":            "%[1]s must be a valid email address",
	"oneof":            "%[1]s must be one of [%[2]s]",
	"hostname":         "%[1]s must be a valid hostname",
	"hostname_rfc1123": "%[1]s must be a valid hostname",
	"alphanum":         "%[1]s must contain only letters and digits",
}

func getFieldErrorMessage(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.Index(key, "."); i >= 0 {
		key = key[i+1:]
	}

	if tmpl, ok := fieldMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, key, fe.Param())
	}

	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters long"
	case reflect.Slice, reflect.Map:
		unit = " entries"
	}
	switch fe.Tag() {
	case "min":
		if unit == " entries" {
			return fmt.Sprintf("%s must contain at least %s entries", key, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s%s", key, fe.Param(), unit)
	case "max":
		if unit == " entries" {
			return fmt.Sprintf("%s must contain at most %s entries", key, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s%s", key, fe.Param(), unit)
	}
	return fmt.Sprintf("%s failed validation for '%s'", key, fe.Tag())
}

// ValidateEmail checks a single address with the same rules as struct tags.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return errors.NewValidationError(fmt.Sprintf("%q is not a valid email address", email))
	}
	return nil
}

// ValidateServerAddress accepts a hostname or an IP literal.
func ValidateServerAddress(address string) error {
	if err := validate.Var(address, "required,hostname_rfc1123|ip"); err != nil {
		return errors.NewValidationError(fmt.Sprintf("%q is not a valid server address", address))
	}
	return nil
}

// ValidatePort checks a TCP port number.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return errors.NewValidationError(fmt.Sprintf("port %d is out of range", port))
	}
	return nil
}

// ValidateUsername enforces the account name rules of the provisioning nodes:
// alphanumeric, starting with a letter, at most 32 characters.
func ValidateUsername(username string) error {
	if err := validate.Var(username, "required,alphanum,max=32"); err != nil {
		return errors.NewValidationError(fmt.Sprintf("%q is not a valid username (letters and digits only, at most 32)", username))
	}
	c := username[0]
	if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
		return errors.NewValidationError(fmt.Sprintf("%q must start with a letter", username))
	}
	return nil
}

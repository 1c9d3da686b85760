package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/chirp/internal/common"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names so messages match what the user typed
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// checkInput validates a tagged input struct and maps the first failing
// rule to a validation error from package common.
func checkInput(in any) error {
	return translate(validate.Struct(in), "")
}

// checkVar validates a single value, reporting it as field.
func checkVar(field string, value any, rules string) error {
	return translate(validate.Var(value, rules), field)
}

func translate(err error, field string) error {
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	fe := errs[0]
	if fe.Field() != "" {
		field = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", common.ErrRequiredField, field)
	case "email":
		return common.ErrInvalidEmail
	case "eqfield":
		return common.ErrPasswordMismatch
	case "max":
		return fmt.Errorf("%w: %s", common.ErrFieldTooLong, field)
	case "uuid":
		return fmt.Errorf("%w: %s", common.ErrInvalidID, field)
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, field)
}

const (
	usernameRules = "required,max=64"
	emailRules    = "required,max=255,email"
	idRules       = "required,uuid"
)

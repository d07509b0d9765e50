package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pressgate/pressgate/internal/gateway"
)

var validate = newValidator()

// newValidator keys violations by json tag so local errors land on the
// same field names the backend uses.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkInput validates a form struct locally before any backend call.
// Violations are returned as ValidationError with the same field-keyed
// shape the backend emits, so handlers render both identically.
func checkInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := gateway.FieldErrors{}
	for _, fe := range verrs {
		fields[fe.Field()] = gateway.NewFieldMessages(ruleMessage(fe))
	}
	return &gateway.ValidationError{Fields: fields}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	case "max":
		return "Must be at most " + fe.Param() + " characters."
	case "eqfield":
		return "Passwords do not match."
	default:
		return "This value is invalid."
	}
}

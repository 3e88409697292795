package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance. Field names in errors use the
// json tag so they match what clients sent.
var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FailedFields lists the json names of the fields that failed validation.
func FailedFields(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field())
	}
	return out
}

// ValidationMessage picks a client message for a validation error. Keys of
// overrides are "field.tag" (e.g. "email.email"); the first failed field
// with an override wins, otherwise def is returned.
func ValidationMessage(err error, def string, overrides map[string]string) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return def
	}
	for _, fe := range verrs {
		if msg, ok := overrides[fe.Field()+"."+fe.Tag()]; ok {
			return msg
		}
	}
	return def
}

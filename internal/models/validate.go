package models

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

var tagMessages = map[string]string{
	"required": "is required",
	"notblank": "must not be blank",
	"min":      "must not be empty",
	"unique":   "must not contain duplicates",
	"category": "is not a known category",
	"priority": "is not a known priority",
	"channel":  "is not a known channel",
}

// Validator returns the shared validator with the enumeration tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "category", func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).Valid()
		})
		mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
			return Priority(fl.Field().String()).Valid()
		})
		mustRegister(v, "channel", func(fl validator.FieldLevel) bool {
			return Channel(fl.Field().String()).Valid()
		})

		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ValidateStruct runs the struct tags of s and reports the first failure as a *ValidationError.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		msg = "failed " + fe.Tag() + " check"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

func (d Draft) Validate() error {
	return ValidateStruct(d)
}

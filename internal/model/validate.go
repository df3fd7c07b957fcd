package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one violated constraint, addressed by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint of a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// TypeFieldError describes a JSON value of the wrong type, such as a string
// sent for a number, as a FieldError on the offending path.
func TypeFieldError(err *json.UnmarshalTypeError) FieldError {
	t := err.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	msg := "has an invalid type"
	switch {
	case t == dateType:
		msg = "must be a date in YYYY-MM-DD format"
	case t == nil:
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		msg = "must be a number"
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Uint64:
		msg = "must be an integer"
	case t.Kind() == reflect.String:
		msg = "must be a string"
	case t.Kind() == reflect.Bool:
		msg = "must be true or false"
	case t.Kind() == reflect.Struct:
		msg = "must be an object"
	case t.Kind() == reflect.Slice:
		msg = "must be an array"
	}
	return FieldError{Field: err.Field, Message: msg}
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || clockPattern.MatchString(s)
		})
		validate = v
	})
	return validate
}

// Validate trims every string field of rec in place and checks its
// constraints. It returns a *ValidationError listing each violation, or nil.
func Validate(rec any) error {
	TrimStrings(rec)

	var fields []FieldError
	err := validatorInstance().Struct(rec)
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fieldPath(fe), Message: message(fe)})
		}
	default:
		return fmt.Errorf("validate: %w", err)
	}

	if c, ok := rec.(Checker); ok {
		fields = append(fields, c.Check()...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// fieldPath drops the root struct name from the namespace, so
// "MeltingLog.tapping.tempC" becomes "tapping.tempC".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be greater than or equal to " + fe.Param()
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be less than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "clock":
		return "must be a time in HH:MM format"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// TrimStrings removes surrounding whitespace from every exported string
// field reachable from v through structs and pointers.
func TrimStrings(v any) {
	trimValue(reflect.ValueOf(v))
}

func trimValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if !v.IsNil() {
			trimValue(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				trimValue(v.Field(i))
			}
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}

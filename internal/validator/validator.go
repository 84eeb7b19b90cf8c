package validator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"clubapi/internal/model"
)

const (
	ErrFieldRequired      = "is required"
	ErrInvalidFormat      = "has an invalid format"
	ErrFieldExceedsMaxLen = "exceeds maximum length"
	ErrFieldBelowMinLen   = "is below minimum length"
	ErrFieldExceedsMaxVal = "exceeds maximum value"
	ErrFieldBelowMinVal   = "is below minimum value"
	ErrUnknownValidation  = "is invalid"
)

var global = New()

// Error lists every failing field by its json name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("role", validateRole)
	_ = v.RegisterValidation("futuretime", validateFutureTime)
	return v
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func validateRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func validateFutureTime(fl validator.FieldLevel) bool {
	switch t := fl.Field().Interface().(type) {
	case time.Time:
		return t.After(time.Now())
	case *time.Time:
		return t == nil || t.After(time.Now())
	}
	return false
}

// Validate checks v against its struct tags and returns *Error on failure.
func Validate(ctx context.Context, v any) error {
	return parseValidationErrors(global.StructCtx(ctx, v))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(vErrors))}
	for _, fe := range vErrors {
		out.Fields[fieldPath(fe)] = message(fe)
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return ErrFieldRequired
	case "max":
		if fe.Kind() == reflect.String {
			return ErrFieldExceedsMaxLen
		}
		return ErrFieldExceedsMaxVal
	case "min":
		if fe.Kind() == reflect.String {
			return ErrFieldBelowMinLen
		}
		return ErrFieldBelowMinVal
	case "lt", "lte":
		return ErrFieldExceedsMaxVal
	case "gt", "gte":
		return ErrFieldBelowMinVal
	case "email", "uuid", "uuid4", "len", "iso4217":
		return ErrInvalidFormat
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "role":
		return "must be a club role"
	case "futuretime":
		return "must be in the future"
	case "gtfield":
		return "must be after " + fe.Param()
	case "ne":
		return "must not be " + fe.Param()
	}
	return ErrUnknownValidation
}

package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation wraps every rejected request body or query.
	ErrValidation = errors.New("validation failed")

	// ErrBinding means the body or query could not be decoded.
	ErrBinding = errors.New("binding failed")

	// ErrRequestBody means the body could not be read at all.
	ErrRequestBody = errors.New("request body unreadable")
)

// Validator returns the shared validator. Field names in errors follow the
// json tags, and three tags are added for text bound for the region:
//
//	notempty    not blank after trimming
//	nonul       no NUL byte, which would end a stored C string early
//	maxbytes=N  at most N bytes; max counts runes
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return strings.IndexByte(fl.Field().String(), 0) < 0
	})

	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})

	return v
})

// Validate checks the struct tags of v.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// Validatable is implemented by requests with rules beyond struct tags.
type Validatable interface {
	Validate() error
}

// ValidateAll checks struct tags, then the Validate method if v has one.
// Errors from Validate keep their domain type.
func ValidateAll(v any) error {
	if err := Validate(v); err != nil {
		return err
	}

	if vv, ok := v.(Validatable); ok {
		if err := vv.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return nil
}

// BindAndValidate binds the body by content type, so the JSON API and plain
// HTML form posts share one handler, then runs ValidateAll.
func BindAndValidate(c *gin.Context, v any) error {
	return bindThen(c.ShouldBind(v), v)
}

// BindQueryAndValidate binds query parameters, then runs ValidateAll.
func BindQueryAndValidate(c *gin.Context, v any) error {
	return bindThen(c.ShouldBindQuery(v), v)
}

func bindThen(bindErr error, v any) error {
	if bindErr != nil {
		return fmt.Errorf("%w: %w", ErrBinding, bindErr)
	}

	return ValidateAll(v)
}

// ValidationErrors maps each failing field to a readable message. It is
// empty when err holds no validator errors.
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, fe := range errs {
			out[fe.Field()] = validationMessage(fe)
		}
	}

	return out
}

// IsValidationError reports whether err holds validator errors.
func IsValidationError(err error) bool {
	var errs validator.ValidationErrors
	return errors.As(err, &errs)
}

var validationMessages = map[string]string{
	"required": "this field is required",
	"notempty": "must not be empty",
	"nonul":    "must not contain NUL bytes",
	"maxbytes": "must be at most {param} bytes",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"gt":       "must be greater than {param}",
	"lt":       "must be less than {param}",
	"oneof":    "must be one of: {param}",
}

func validationMessage(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	switch tag {
	case "min", "max":
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		}

		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}

		return "must be " + bound + " " + param + unit
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", param)
	}

	return "failed validation: " + tag
}

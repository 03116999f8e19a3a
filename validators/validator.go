package validators

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Lengths are the configurable field bounds enforced on request bodies.
type Lengths struct {
	Title    int
	Content  int
	Username int
	Email    int
}

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator registers the length tags used by the request DTOs:
// title_len, content_len, username_len and email_len.
func NewValidator(l Lengths) *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "title_len", maxRunes(l.Title))
	mustRegister(v, "content_len", maxRunes(l.Content))
	mustRegister(v, "username_len", maxRunes(l.Username))
	mustRegister(v, "email_len", maxRunes(l.Email))
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return ValidationError{Fields: verrs}
		}
		return err
	}
	return nil
}

// ValidationError lists failed fields in a client readable form.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, describe(fe))
	}
	return strings.Join(msgs, "; ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "title_len", "content_len", "username_len", "email_len":
		return fmt.Sprintf("%s is too long", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func maxRunes(limit int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= limit
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

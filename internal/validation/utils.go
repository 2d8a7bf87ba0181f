package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/deppfellow/todo-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
//   - Define a request struct with validator tags (`validate:"required,max=200"`)
//   - Implement Validate() error that normalizes the payload and calls Struct(req)
//   - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
// Used for rules that cannot be expressed via validator tags, such as an
// explicit null.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
//
// Field names in errors are taken from the `json` tag, so they match what
// the client sent ("title", not "Title"). Extra rules:
//   - notblank: rejects whitespace-only strings
//   - nonul: rejects strings containing a NUL character
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(jsonName)
		validate.RegisterCustomTypeFunc(optionalValue, Optional[string]{}, Optional[bool]{})

		// Only fails on a programming error (duplicate/empty tag).
		if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		if err := validate.RegisterValidation("nonul", noNulCharacter); err != nil {
			panic(err)
		}
	})
	return validate
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// PostgreSQL text columns cannot store NUL.
func noNulCharacter(fl validator.FieldLevel) bool {
	return !strings.ContainsRune(fl.Field().String(), 0)
}

// Struct validates s with the shared validator. Optional fields sent as
// null are reported next to the tag failures.
func Struct(s any) error {
	nulls := nullFields(s)
	err := Validator().Struct(s)

	switch {
	case len(nulls) == 0:
		return err
	case err == nil:
		return nulls
	default:
		return errors.Join(nulls, err)
	}
}

// BindParams binds `param` tags, and `query` tags for GET, DELETE and HEAD.
// It never reads the body, so callers can act on ids before parsing it.
func BindParams(c echo.Context, payload any) error {
	binder := &echo.DefaultBinder{}

	if err := binder.BindPathParams(c, payload); err != nil {
		return translateBindError(err)
	}

	switch c.Request().Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if err := binder.BindQueryParams(c, payload); err != nil {
			return translateBindError(err)
		}
	}
	return nil
}

// BindBody decodes the request body into payload. An empty body is not an error.
func BindBody(c echo.Context, payload any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, payload); err != nil {
		return translateBindError(err)
	}
	return nil
}

// translateBindError maps binder failures to API errors:
//   - wrong JSON type for a field -> 400 field error on that field
//   - malformed JSON              -> 400 {"detail": "..."}
//   - other echo errors (415...)  -> passed through unchanged
func translateBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return errs.NewValidationError([]errs.FieldError{{
			Field: typeErr.Field,
			Error: typeMismatchMessage(typeErr.Type),
		}})
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return errs.NewMalformedBodyError(fmt.Sprintf("JSON parse error - %s", syntaxErr.Error()))
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code != http.StatusBadRequest {
			return err
		}
		if msg, ok := echoErr.Message.(string); ok {
			return errs.NewMalformedBodyError(msg)
		}
	}

	return errs.NewMalformedBodyError("Malformed request body")
}

// Validate runs payload.Validate and converts failures into a 400 HTTPError.
func Validate(payload Validatable) error {
	if _, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewValidationError(fieldErrors)
	}
	return nil
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func typeMismatchMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "A valid integer is required."
	default:
		return "Invalid type."
	}
}

// extractValidationError flattens custom and tag failures into field errors.
// A field with a custom error (null) gets no tag error on top of it.
func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError
	reported := map[string]bool{}

	var customValidationErrors CustomValidationErrors
	hasCustom := errors.As(err, &customValidationErrors)
	for _, cerr := range customValidationErrors {
		reported[cerr.Field] = true
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: cerr.Field,
			Error: cerr.Message,
		})
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		if hasCustom {
			return "Validation failed", fieldErrors
		}
		// Not a validation failure at all; report it against the whole payload.
		return "Validation failed", []errs.FieldError{{Field: "non_field_errors", Error: err.Error()}}
	}

	for _, verr := range validationErrors {
		field := verr.Field()
		if reported[field] {
			continue
		}
		var msg string

		switch verr.Tag() {
		case "required":
			msg = "This field is required."

		case "notblank":
			msg = "This field may not be blank."

		case "nonul":
			msg = "Null characters are not allowed."

		case "max":
			if isString(verr.Type()) {
				msg = fmt.Sprintf("Ensure this field has no more than %s characters.", verr.Param())
			} else {
				msg = fmt.Sprintf("Ensure this value is less than or equal to %s.", verr.Param())
			}

		default:
			if verr.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, verr.Tag(), verr.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, verr.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

func isString(t reflect.Type) bool {
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.String
}

package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "title", "error": "This field may not be blank." }
type FieldError struct {
	// Field is the JSON field name the error relates to (e.g. "title").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRetry tells the client it may retry after the duration in Value.
	ActionTypeRetry ActionType = "retry"
)

// Action describes an optional "what the client should do next" instruction.
type Action struct {
	// Type is the kind of action (e.g. "retry").
	Type ActionType `json:"type"`

	// Message is human-readable guidance for the client/UI.
	Message string `json:"message"`

	// Value is the payload for the action (e.g. a retry delay).
	Value string `json:"value"`
}

// HTTPError is the main custom error type for API responses.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: whether the message is safe to show to end users as-is.
//   - Errors: list of per-field errors (validation).
//   - Action: client instruction (optional).
//   - Payload: when set, written as the response body instead of the envelope.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors"`

	// Action is an optional client instruction.
	Action *Action `json:"action"`

	// Payload replaces the envelope above in the response body.
	// The todo API uses it for its fixed error bodies.
	Payload any `json:"-"`
}

// Error makes *HTTPError satisfy the built-in error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It only compares the type, not Code/Status, so errors.Is(err, &HTTPError{})
// answers "is this an API error at all".
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithPayload returns a copy of this HTTPError that renders payload as its body.
func (e *HTTPError) WithPayload(payload any) *HTTPError {
	cp := *e
	cp.Payload = payload
	return &cp
}

// Body returns what should be written to the client for this error.
func (e *HTTPError) Body() any {
	if e.Payload != nil {
		return e.Payload
	}
	return e
}

// FieldErrorMap groups field errors by field name:
//
//	[{title, "a"}, {title, "b"}] -> {"title": ["a", "b"]}
//
// Field order inside each list follows the input order.
func FieldErrorMap(fieldErrors []FieldError) map[string][]string {
	out := make(map[string][]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		out[fe.Field] = append(out[fe.Field], fe.Error)
	}
	return out
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or maximum lengths) defined in struct tags
// and converts binding and validation failures into field
// errors the client can understand.
package validation

// Package errs defines custom error types and utilities.
//
// Every error that reaches the HTTP layer is (or is converted into) an
// *HTTPError so clients receive consistent, actionable error bodies:
// the standard envelope for infrastructure failures and fixed domain
// bodies for validation and not-found outcomes.
package errs

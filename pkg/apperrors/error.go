// Package apperrors provides the error types returned by the Minds SDK. It implements the
// standard error interface while adding error chaining, status codes and the raw response
// body of a failed request, so callers can use errors.Is against the sentinel kinds in
// this package and still inspect what the server said.
package apperrors

// Error defines the interface for SDK errors. It extends the standard error interface with
// methods for wrapping and status code management. All builder methods return Error to
// support method chaining.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetStatusCode(int) Error               // sets HTTP status code for the error
	StatusCode() int                       // returns the current status code
	WithBody(string) Error                 // attaches the raw response body
	Body() string                          // returns the raw response body, if any
	ErrorAll() string                      // returns full message including wrapped errors
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Categories. Every error returned by services unwraps to one of these.
var (
	ErrNotFound      = errors.New("not found")
	ErrWrongPassword = errors.New("wrong credential")
	ErrValidation    = errors.New("validation failed")
	ErrRateLimited   = errors.New("rate limited")
	ErrAlreadyExists = errors.New("already exists")
	ErrStorage       = errors.New("storage failure")
)

// Error carries a user visible message and the category it belongs to.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

var (
	ErrTitleEmpty    = &Error{Kind: ErrValidation, Message: "Too few parameters."}
	ErrTitleTooLong  = &Error{Kind: ErrValidation, Message: "Title is too long."}
	ErrBoardFull     = &Error{Kind: ErrValidation, Message: "Too many threads."}
	ErrCommentEmpty  = &Error{Kind: ErrValidation, Message: "Too few parameters."}
	ErrNameTooLong   = &Error{Kind: ErrValidation, Message: "Name is too long."}
	ErrTextTooLong   = &Error{Kind: ErrValidation, Message: "Text is too long."}
	ErrThreadFull    = &Error{Kind: ErrValidation, Message: "Too many comments."}
	ErrParamMissing  = &Error{Kind: ErrValidation, Message: "Too few parameters."}
	ErrIntervalGate  = &Error{Kind: ErrRateLimited, Message: "Too many requests. Please wait and try again."}
	ErrBadPassword   = &Error{Kind: ErrWrongPassword, Message: "Wrong ID or password."}
	ErrRemovalFailed = &Error{Kind: ErrStorage, Message: "Unable to remove the file."}
)

func NotFound(id any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("ID '%v' not found.", id)}
}

func AlreadyExists(id any) error {
	return &Error{Kind: ErrAlreadyExists, Message: fmt.Sprintf("ID '%v' already exists.", id)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// StatusCode maps an error to the HTTP status it should be reported with.
func StatusCode(err error) int {
	var withCode *ErrorWithStatusCode
	if errors.As(err, &withCode) {
		return withCode.StatusCode
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

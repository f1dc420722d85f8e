package model

import "errors"

// Error category codes surfaced to callers.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeParseError    = "PARSE_ERROR"
	CodeProviderError = "PROVIDER_ERROR"
	CodeCodegenError  = "CODEGEN_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// CodedError carries an error category code alongside the message.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CodedError) Unwrap() error {
	return e.Err
}

// NewCodedError creates a CodedError with the given category and message.
func NewCodedError(code, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// WrapCoded wraps an underlying error with a category and message.
func WrapCoded(code, message string, err error) *CodedError {
	return &CodedError{Code: code, Message: message, Err: err}
}

// ErrorCode extracts the category code from err, defaulting to INTERNAL_ERROR.
func ErrorCode(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeInternalError
}

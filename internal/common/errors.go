package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError.
const (
	CodeInvalidDocument     = "INVALID_DOCUMENT"
	CodeDocumentProcessing  = "DOCUMENT_PROCESSING"
	CodeLLMTransport        = "LLM_TRANSPORT"
	CodeValidationDowngrade = "VALIDATION_DOWNGRADE"
	CodeConfig              = "CONFIG_ERROR"
)

// Extraction error classes. Only the first two abort a request.
var (
	ErrInvalidDocument     = errors.New("invalid document")
	ErrDocumentProcessing  = errors.New("document processing failed")
	ErrLLMTransport        = errors.New("llm transport failure")
	ErrValidationDowngrade = errors.New("llm output rejected")
	ErrInvalidInput        = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InvalidDocument reports input that is not a PDF.
func InvalidDocument(message string) *AppError {
	return NewAppError(CodeInvalidDocument, message, ErrInvalidDocument)
}

// DocumentProcessing wraps an internal text-extraction failure, keeping the original message.
func DocumentProcessing(err error) *AppError {
	return NewAppError(CodeDocumentProcessing, err.Error(), errors.Join(ErrDocumentProcessing, err))
}

// LLMTransport wraps a failed or unusable gateway round trip.
func LLMTransport(message string, cause error) *AppError {
	if cause == nil {
		return NewAppError(CodeLLMTransport, message, ErrLLMTransport)
	}
	return NewAppError(CodeLLMTransport, message, errors.Join(ErrLLMTransport, cause))
}

// ValidationDowngrade records why LLM output was not trusted.
func ValidationDowngrade(reason string) *AppError {
	return NewAppError(CodeValidationDowngrade, reason, ErrValidationDowngrade)
}

// UserMessage returns the message an AppError carries, or err.Error() otherwise.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

package errors

import "fmt"

// ErrorCode represents a Ladle error code.
type ErrorCode string

const (
	ErrUnsupportedInput  ErrorCode = "UNSUPPORTED_INPUT"   // 400
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrDuplicateRecipe   ErrorCode = "DUPLICATE_RECIPE"    // 409
	ErrConflictingRecipe ErrorCode = "CONFLICTING_RECIPE"  // 409
	ErrExtractionQuality ErrorCode = "EXTRACTION_QUALITY"  // 422
	ErrInvalidTitle      ErrorCode = "INVALID_TITLE"       // 422
	ErrVaultWrite        ErrorCode = "VAULT_WRITE"         // 500
	ErrInternal          ErrorCode = "INTERNAL"            // 500
	ErrSourceFetch       ErrorCode = "SOURCE_FETCH_FAILED" // 502
	ErrExtractionSchema  ErrorCode = "EXTRACTION_SCHEMA"   // 502
	ErrLLMUnavailable    ErrorCode = "LLM_UNAVAILABLE"     // 503
)

// LadleError represents a structured error with code, status, and details.
type LadleError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *LadleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *LadleError) Unwrap() error {
	return e.cause
}

// NewUnsupportedInput creates a 400 error for input that cannot be processed.
func NewUnsupportedInput(msg string) *LadleError {
	return &LadleError{
		Code:    ErrUnsupportedInput,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LadleError {
	return &LadleError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewSourceFetch creates a 502 error for a failed caption/source retrieval.
func NewSourceFetch(url string, err error) *LadleError {
	return &LadleError{
		Code:    ErrSourceFetch,
		Status:  502,
		Message: fmt.Sprintf("failed to fetch source content: %v", err),
		Details: map[string]any{"url": url},
		cause:   err,
	}
}

// NewLLMUnavailable creates a 503 error for backend connection/timeout failures.
func NewLLMUnavailable(err error) *LadleError {
	return &LadleError{
		Code:    ErrLLMUnavailable,
		Status:  503,
		Message: fmt.Sprintf("llm backend unavailable: %v", err),
		cause:   err,
	}
}

// NewExtractionSchema creates a 502 error when the backend output fails
// structural validation after the bounded repair attempt.
func NewExtractionSchema(detail string) *LadleError {
	return &LadleError{
		Code:    ErrExtractionSchema,
		Status:  502,
		Message: fmt.Sprintf("llm output failed schema validation: %s", detail),
	}
}

// NewExtractionQuality creates a 422 error when output parses but the source
// text lacked usable recipe content (empty ingredients/instructions, bad values).
func NewExtractionQuality(detail string) *LadleError {
	return &LadleError{
		Code:    ErrExtractionQuality,
		Status:  422,
		Message: fmt.Sprintf("no usable recipe in input: %s", detail),
	}
}

// NewInvalidTitle creates a 422 error when a title produces an empty slug.
func NewInvalidTitle(title string) *LadleError {
	return &LadleError{
		Code:    ErrInvalidTitle,
		Status:  422,
		Message: fmt.Sprintf("title %q produces an empty filename slug", title),
		Details: map[string]any{"title": title},
	}
}

// NewDuplicateRecipe creates a 409 error for an existing target file under
// the never-overwrite policy.
func NewDuplicateRecipe(title, path string) *LadleError {
	return &LadleError{
		Code:    ErrDuplicateRecipe,
		Status:  409,
		Message: fmt.Sprintf("recipe %q already exists at %s", title, path),
		Details: map[string]any{"title": title, "path": path},
	}
}

// NewConflictingRecipe creates a 409 error for a same-title file whose
// ingredients differ from the incoming recipe.
func NewConflictingRecipe(title, path string) *LadleError {
	return &LadleError{
		Code:    ErrConflictingRecipe,
		Status:  409,
		Message: fmt.Sprintf("recipe %q exists with different ingredients; rename or use overwrite=always", title),
		Details: map[string]any{"title": title, "path": path},
	}
}

// NewVaultWrite creates a 500 error wrapping the underlying I/O cause.
func NewVaultWrite(path string, err error) *LadleError {
	return &LadleError{
		Code:    ErrVaultWrite,
		Status:  500,
		Message: fmt.Sprintf("vault write failed for %s: %v", path, err),
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *LadleError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LadleError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is a LadleError with the given code.
func Is(err error, code ErrorCode) bool {
	if lErr, ok := err.(*LadleError); ok {
		return lErr.Code == code
	}
	return false
}

// CodeOf returns the error code, or ErrInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if lErr, ok := err.(*LadleError); ok {
		return lErr.Code
	}
	return ErrInternal
}

// StatusOf returns the HTTP status for an error, or 500 for untyped errors.
func StatusOf(err error) int {
	if lErr, ok := err.(*LadleError); ok {
		return lErr.Status
	}
	return 500
}

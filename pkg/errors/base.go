package errors

// baseError carries a cause, code, and lazily-allocated details map that
// ValidationError, StorageError, and IndexError each embed and build on.
type baseError struct {
	cause   error
	message string
	code    ErrorCode
	details map[string]any
}

// NewBaseError wraps err (nil for a root cause) with a code and message.
func NewBaseError(err error, code ErrorCode, msg string) *baseError {
	return &baseError{cause: err, code: code, message: msg}
}

// WithMessage replaces the error message.
func (be *baseError) WithMessage(msg string) *baseError {
	be.message = msg
	return be
}

// WithCode replaces the error code.
func (be *baseError) WithCode(code ErrorCode) *baseError {
	be.code = code
	return be
}

// WithDetail attaches a key/value pair, allocating the details map on first use.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error implements the error interface.
func (b *baseError) Error() string {
	return b.message
}

// Unwrap exposes the cause to errors.Is/errors.As.
func (b *baseError) Unwrap() error {
	return b.cause
}

// Code returns the error code.
func (b *baseError) Code() ErrorCode {
	return b.code
}

// Details returns the details map. Callers must not mutate it.
func (b *baseError) Details() map[string]any {
	return b.details
}

package tracker

import "errors"

const (
	// INVALID_ARGUMENT_ERROR_CODE represents an error for invalid input arguments.
	INVALID_ARGUMENT_ERROR_CODE = 3
	// NOT_FOUND_ERROR_CODE represents an error for a resource not being found.
	NOT_FOUND_ERROR_CODE = 5
	// FAILED_PRECONDITION_ERROR_CODE represents an error for a failed precondition.
	FAILED_PRECONDITION_ERROR_CODE = 9
	// INTERNAL_ERROR_CODE represents an internal error.
	INTERNAL_ERROR_CODE = 13
)

// Error is a coded error returned across the operation boundary. The message
// is user-facing; the code maps to an HTTP status in the RPC layer.
type Error struct {
	Message string
	Code    int
}

func (e *Error) Error() string { return e.Message }

// NewError creates a coded error with the given user-facing message.
func NewError(message string, code int) *Error {
	return &Error{Message: message, Code: code}
}

var (
	ErrInternal       = NewError("internal error occurred", INTERNAL_ERROR_CODE)
	ErrBadInput       = NewError("bad input", INVALID_ARGUMENT_ERROR_CODE)
	ErrPayloadDecode  = NewError("cannot decode json", INVALID_ARGUMENT_ERROR_CODE)
	ErrPayloadEncode  = NewError("cannot encode json", INTERNAL_ERROR_CODE)
	ErrPayloadInvalid = NewError("payload is invalid", INVALID_ARGUMENT_ERROR_CODE)

	// User-facing ledger errors. Messages are part of the IPC contract and
	// surface verbatim in the client UI.
	ErrCharacterNotFound    = NewError("角色不存在", NOT_FOUND_ERROR_CODE)
	ErrAccountNotFound      = NewError("账号不存在", NOT_FOUND_ERROR_CODE)
	ErrTaskNotFound         = NewError("该任务不存在", NOT_FOUND_ERROR_CODE)
	ErrTaskActionNotAllowed = NewError("该任务不支持此操作", FAILED_PRECONDITION_ERROR_CODE)
	ErrInsufficientEnergy   = NewError("奥德能量不足", FAILED_PRECONDITION_ERROR_CODE)
	ErrInsufficientAttempts = NewError("可用次数不足", FAILED_PRECONDITION_ERROR_CODE)
	ErrLastAccount          = NewError("至少保留一个账号", FAILED_PRECONDITION_ERROR_CODE)
	ErrLastCharacter        = NewError("每个账号至少保留一个角色", FAILED_PRECONDITION_ERROR_CODE)
)

// errorCode extracts the numeric code from an error, defaulting to internal.
func errorCode(err error) int {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return INTERNAL_ERROR_CODE
}

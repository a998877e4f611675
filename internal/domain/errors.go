package domain

import "errors"

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrDuplicateUser      Error = "username already taken"
	ErrInvalidCredentials Error = "invalid username or password"
	ErrTokenExpired       Error = "token expired"
	ErrTokenInvalid       Error = "invalid token"
	ErrTargetOffline      Error = "target user is not connected"
	ErrPersistence        Error = "failed to store message"
	ErrStoreUnavailable   Error = "storage unavailable"

	ErrNotFound        Error = "not found"
	ErrInvalidUsername Error = "invalid username"
	ErrInvalidPassword Error = "invalid password"
	ErrEmptyMessage    Error = "message body is empty"
	ErrMessageTooLong  Error = "message body is too long"
	ErrBadRequest      Error = "malformed request"
)

// error codes sent to clients next to the human readable reason
const (
	CodeDuplicateUser      = "duplicate_user"
	CodeInvalidCredentials = "invalid_credentials"
	CodeTokenExpired       = "token_expired"
	CodeTokenInvalid       = "token_invalid"
	CodeTargetOffline      = "target_offline"
	CodePersistence        = "persistence_error"
	CodeStoreUnavailable   = "store_unavailable"
	CodeInvalidUsername    = "invalid_username"
	CodeInvalidPassword    = "invalid_password"
	CodeEmptyMessage       = "empty_message"
	CodeMessageTooLong     = "message_too_long"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal"
)

var errorCodes = []struct {
	err  Error
	code string
}{
	{ErrDuplicateUser, CodeDuplicateUser},
	{ErrInvalidCredentials, CodeInvalidCredentials},
	{ErrTokenExpired, CodeTokenExpired},
	{ErrTokenInvalid, CodeTokenInvalid},
	{ErrTargetOffline, CodeTargetOffline},
	{ErrPersistence, CodePersistence},
	{ErrStoreUnavailable, CodeStoreUnavailable},
	{ErrInvalidUsername, CodeInvalidUsername},
	{ErrInvalidPassword, CodeInvalidPassword},
	{ErrEmptyMessage, CodeEmptyMessage},
	{ErrMessageTooLong, CodeMessageTooLong},
	{ErrBadRequest, CodeBadRequest},
}

// ErrorCode maps an error chain to the code carried on the wire.
// Order matters: ErrPersistence wraps store errors and must win over them.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// Reason returns the text shown to the client. Unknown errors are not leaked.
func Reason(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return string(ec.err)
		}
	}
	return "internal server error"
}

// IsTokenError reports whether err came from token verification.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenInvalid)
}

package errors

// ErrorCode is a stable machine-readable error identifier exposed to clients
type ErrorCode string

const (
	ErrorCode_INTERNAL         ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND        ErrorCode = "NOT_FOUND"
	ErrorCode_UNAUTHENTICATED  ErrorCode = "UNAUTHENTICATED"

	ErrorCode_TAB_INVALID_TOKEN ErrorCode = "TAB_INVALID_TOKEN"

	ErrorCode_LESSON_NOT_FOUND         ErrorCode = "LESSON_NOT_FOUND"
	ErrorCode_LESSON_INVALID_MANIFEST  ErrorCode = "LESSON_INVALID_MANIFEST"
	ErrorCode_LESSON_ASSET_UNAVAILABLE ErrorCode = "LESSON_ASSET_UNAVAILABLE"

	ErrorCode_SESSION_CONFLICT_ACTIVE ErrorCode = "SESSION_CONFLICT_ACTIVE"
	ErrorCode_SESSION_CONFLICT_STALE  ErrorCode = "SESSION_CONFLICT_STALE"

	ErrorCode_STORAGE_UNAVAILABLE ErrorCode = "STORAGE_UNAVAILABLE"
)

// String returns the code as a string
func (c ErrorCode) String() string {
	return string(c)
}

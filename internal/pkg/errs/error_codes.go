/*
Package errs provides custom error types and application-level error code constants.

These error codes identify business and system errors both inside the server and in
HTTP and websocket responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room and Admission Errors
const (
	// ErrRoomNotFound indicates that no video chat is scheduled under the room id.
	ErrRoomNotFound = 2103

	// ErrRoomNotOpen indicates that the admission window has not opened yet.
	ErrRoomNotOpen = 2105

	// ErrRoomClosed indicates that the admission window has already closed.
	ErrRoomClosed = 2106

	// ErrRoomScheduleInvalid indicates that the room's scheduled start is missing or unreadable.
	ErrRoomScheduleInvalid = 2107

	// ErrRoomMismatch indicates a join for a room other than the one the session is bound to.
	ErrRoomMismatch = 2108

	// ErrMessageContentTooLong indicates that the chat message exceeded the maximum length.
	ErrMessageContentTooLong = 2201
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrSessionKicked indicates that the connection was replaced by a newer one of the same user.
	ErrSessionKicked = 3004

	// ErrUserNotFound indicates that the user id is unknown to the user store.
	ErrUserNotFound = 3009

	// ErrSessionInvalid indicates a missing, expired, forged or already used session token.
	ErrSessionInvalid = 3011
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates that the study/user store could not be queried.
	ErrStoreUnavailable = 5002
)

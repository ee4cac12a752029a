package errs

import "net/http"

// errorMap holds the template CustomError for every known code.
// A zero Status means the error is reported with HTTP 200 and a non-zero business code.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx
	ErrRoomNotFound:          {Code: ErrRoomNotFound, Message: "Study room not found.", Status: http.StatusNotFound},
	ErrRoomNotOpen:           {Code: ErrRoomNotOpen, Message: "The study room opens %s before the session starts.", Status: http.StatusForbidden},
	ErrRoomClosed:            {Code: ErrRoomClosed, Message: "This study session has ended.", Status: http.StatusForbidden},
	ErrRoomScheduleInvalid:   {Code: ErrRoomScheduleInvalid, Message: "The study session has no valid schedule.", Status: http.StatusForbidden},
	ErrRoomMismatch:          {Code: ErrRoomMismatch, Message: "This connection belongs to another room."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},

	// 3xxx
	ErrSessionKicked:  {Code: ErrSessionKicked, Message: "You joined this room from another tab or device."},
	ErrUserNotFound:   {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrSessionInvalid: {Code: ErrSessionInvalid, Message: "Your room session is invalid or expired. Please enter the room again.", Status: http.StatusUnauthorized},

	// 5xxx
	ErrUnknown:          {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreUnavailable: {Code: ErrStoreUnavailable, Message: "Service temporarily unavailable. Please try again.", Status: http.StatusServiceUnavailable},
}

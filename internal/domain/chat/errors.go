package chat

import "errors"

var (
	// ErrNotFound also covers chats and bookings the caller is not part of.
	ErrNotFound       = errors.New("not found")
	ErrCannotChatSelf = errors.New("cannot start chat with yourself")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
)

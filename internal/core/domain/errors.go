package domain

import "errors"

var (
	ErrCorruptSession     = errors.New("corrupt session")
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrTabNotFound        = errors.New("tab not found")
	ErrRedirectLoop       = errors.New("redirect loop")
)

package service

import "errors"

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrSelfBlock          = errors.New("cannot block yourself")
)

package model

import "errors"

// Common errors used across the application
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrGameTypeNotFound = errors.New("game type not found")
)

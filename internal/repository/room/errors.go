package room

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrTokenNotFound   = errors.New("auth token not found")
)

package service

import "errors"

var (
	ErrNotAuthenticated  = errors.New("user not authenticated")
	ErrNoPermission      = errors.New("you don't have permission to access this resource")
	ErrInvalidTransition = errors.New("caption status change is not allowed")
)

package account

import "errors"

var (
	ErrAccountNotFound   = errors.New("user not found")
	ErrAccountExists     = errors.New("user already exists")
	ErrResetTokenInvalid = errors.New("token invalid or expired")
)

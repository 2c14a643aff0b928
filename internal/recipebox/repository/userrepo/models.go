package userrepo

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrTokenNotFound = errors.New("token not found")
)

package services

import "errors"

// サービス層が返すエラー。ハンドラーはerrors.Isでステータスコードに変換します。
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingSubject     = errors.New("token has no subject")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrListNotFound       = errors.New("task list not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAssignmentFailed   = errors.New("failed to assign user to task")
)

// Package common defines shared constants and sentinel errors used across
// the CMS server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Crypto / token codec errors. These never reach the client as-is.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrDecryption   = errors.New("decryption failed")

	// Authentication and authorization.
	ErrIncorrectAuthorizationToken = errors.New("incorrect authorization token")
	ErrIncorrectRefreshToken       = errors.New("incorrect refresh token")
	ErrForbidden                   = errors.New("insufficient role permissions")
	ErrWrongCredentials            = errors.New("wrong credentials")
	ErrCredentialsInUse            = errors.New("credentials already in use")
	ErrInvalidResetToken           = errors.New("password reset token is invalid")

	// Users.
	ErrUserNotExist = errors.New("user not exist")

	// Pages and categories.
	ErrPageNotExist           = errors.New("page not exist")
	ErrCategoryNotExist       = errors.New("category not exist")
	ErrParentCategoryNotExist = errors.New("parent category not exist")
	ErrCategoryOwnParent      = errors.New("category cannot have parent with the same id")
	ErrSlugAlreadyExists      = errors.New("slug already exist")
	ErrTooManySlugAttempts    = errors.New("too many generate slug attempts")

	// Files.
	ErrFileNotExist        = errors.New("file not exist")
	ErrFileNotSent         = errors.New("file not sent")
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// Settings.
	ErrSettingNotExist = errors.New("setting not exist")
)

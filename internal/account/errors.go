package account

import (
	"github.com/redmonkez12/task-manager-api/internal/apperror"
	"github.com/redmonkez12/task-manager-api/internal/httputil"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.KindInvalidCredentials, "INVALID_CREDENTIALS", "unable to login")
	ErrInvalidUpdate      = apperror.New(apperror.KindInvalidUpdate, "INVALID_UPDATE", "invalid updates")
	ErrDuplicateEmail     = apperror.Validation("EMAIL_ALREADY_EXISTS", "email already exists")
	ErrTooManyRequests    = apperror.New(apperror.KindTooManyRequests, httputil.CodeTooManyRequests, "too many requests, please try again later")

	ErrNameRequired      = apperror.Validation("NAME_REQUIRED", "name is required")
	ErrEmailRequired     = apperror.Validation("EMAIL_REQUIRED", "email is required")
	ErrInvalidEmail      = apperror.Validation("INVALID_EMAIL", "please provide valid email")
	ErrPasswordRequired  = apperror.Validation("PASSWORD_REQUIRED", "password is required")
	ErrPasswordTooShort  = apperror.Validation("PASSWORD_TOO_SHORT", "password must be at least 7 characters")
	ErrPasswordContains  = apperror.Validation("PASSWORD_CONTAINS_PASSWORD", `password must not contain "password"`)
	ErrInvalidAge        = apperror.Validation("INVALID_AGE", "age must be non negative")
	ErrInvalidFieldValue = apperror.Validation("INVALID_FIELD_VALUE", "invalid field value")
)

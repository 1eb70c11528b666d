package avatar

import "github.com/redmonkez12/task-manager-api/internal/apperror"

var (
	ErrNotFound    = apperror.NotFound("AVATAR_NOT_FOUND", "avatar not found")
	ErrTooLarge    = apperror.Validation("AVATAR_TOO_LARGE", "file too large")
	ErrNotAnImage  = apperror.Validation("AVATAR_NOT_AN_IMAGE", "please upload an image document")
	ErrUndecodable = apperror.Validation("AVATAR_UNDECODABLE", "image could not be decoded")
	ErrRequired    = apperror.Validation("AVATAR_REQUIRED", "avatar file is required")

	ErrDimensionsTooLarge = apperror.Validation("AVATAR_DIMENSIONS_TOO_LARGE", "image dimensions too large")
)

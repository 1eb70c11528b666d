package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
)

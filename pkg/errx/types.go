package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal server errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents malformed or policy-violating input
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization represents authentication/authorization failures
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeForbidden represents authenticated but disallowed access
	TypeForbidden Type = "FORBIDDEN"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflict errors
	TypeConflict Type = "CONFLICT"

	// TypeExpired represents time-bounded secrets past their window
	TypeExpired Type = "EXPIRED"

	// TypeExternal represents errors from external services
	TypeExternal Type = "EXTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}

package kernel

// AuthContext is the per-request identity injected by the auth middleware.
type AuthContext struct {
	UserID      UserID `json:"user_id"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
}

// IsValid checks whether the AuthContext identifies a user
func (ac *AuthContext) IsValid() bool {
	return !ac.UserID.IsEmpty()
}

// ContextKey is the type for values stored on a request context
type ContextKey string

const (
	// AuthContextKey stores the AuthContext on the request
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey stores the request ID
	RequestIDKey ContextKey = "request_id"
)

package gateway

// AuthError is the gateway's error taxonomy (spec.md §4.6 "Error
// taxonomy"): every kind maps to 401 except Configuration and Internal,
// which map to 500.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

type AuthErrorKind string

const (
	ErrUnauthorized     AuthErrorKind = "unauthorized"
	ErrInvalidToken     AuthErrorKind = "invalid_token"
	ErrExpiredToken     AuthErrorKind = "invalid_token"
	ErrInvalidIssuer    AuthErrorKind = "invalid_token"
	ErrInvalidAudience  AuthErrorKind = "invalid_token"
	ErrInvalidSignature AuthErrorKind = "invalid_token"
	ErrConfiguration    AuthErrorKind = "server_error"
	ErrInternal         AuthErrorKind = "server_error"
)

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) StatusCode() int {
	switch e.Kind {
	case ErrConfiguration, ErrInternal:
		return 500
	default:
		return 401
	}
}

func newUnauthorized(msg string) *AuthError { return &AuthError{Kind: ErrUnauthorized, Message: msg} }
func newInvalidToken(msg string) *AuthError { return &AuthError{Kind: ErrInvalidToken, Message: msg} }
func newExpiredToken() *AuthError {
	return &AuthError{Kind: ErrExpiredToken, Message: "Token has expired"}
}
func newInvalidIssuer() *AuthError {
	return &AuthError{Kind: ErrInvalidIssuer, Message: "Invalid issuer"}
}
func newInvalidAudience() *AuthError {
	return &AuthError{Kind: ErrInvalidAudience, Message: "Invalid audience"}
}
func newInvalidSignature() *AuthError {
	return &AuthError{Kind: ErrInvalidSignature, Message: "Invalid signature"}
}
func newInternal(msg string) *AuthError { return &AuthError{Kind: ErrInternal, Message: msg} }

package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrNotFound is returned by repositories when a lookup matches nothing.
// Callers branch on it with errors.Is, so it is a shared sentinel rather
// than a per-repository error.
var ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")

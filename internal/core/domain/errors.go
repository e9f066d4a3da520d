// Package domain defines the core domain models for the modi kernel.
package domain

import (
	"errors"
	"strings"
)

// DomainError is a coded kernel failure. Codes read MODI-<AREA>-<NNNN>,
// where the leading digit of NNNN is 4 for setup or caller problems and 5
// for I/O problems. Two DomainErrors match under errors.Is when their codes
// are equal.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// NewDomainError creates a sentinel.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString(" (")
		b.WriteString(e.Details)
		b.WriteByte(')')
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Cause }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy carrying details. The receiver is unchanged,
// so sentinels stay reusable.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Transient reports whether the failure came from I/O and may clear on a
// retry.
func (e *DomainError) Transient() bool {
	i := strings.LastIndexByte(e.Code, '-')
	return i >= 0 && strings.HasPrefix(e.Code[i+1:], "5")
}

// GetErrorCode returns the code of the first DomainError in err's chain, or
// "".
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Boot.
var (
	// ErrMissingPrecondition means the install-root marker was not supplied
	// before configuration was built. Boot must stop.
	ErrMissingPrecondition = NewDomainError("MODI-BOOT-4001", "required boot marker is not set")

	// ErrPostInitMutation means a mutating call arrived after the load order
	// was finalized.
	ErrPostInitMutation = NewDomainError("MODI-INIT-4091", "attempted to adjust load order after properties are loaded")
)

// Discovery.
var (
	// ErrDiscoveryIO means a components directory could not be listed.
	// Callers log it and continue with no components.
	ErrDiscoveryIO = NewDomainError("MODI-DISC-5001", "error locating components")

	// ErrBeanRegistration means the host container rejected a component's
	// bean source during Starting.
	ErrBeanRegistration = NewDomainError("MODI-DISC-5002", "bean source registration failed")
)

// Properties.
var (
	// ErrMergeRead means a property source could not be read or parsed
	// during a merge.
	ErrMergeRead = NewDomainError("MODI-PROP-5001", "property source could not be read")

	// ErrSourceNotFound covers both a missing required file and a lookup of
	// a name that was never registered.
	ErrSourceNotFound = NewDomainError("MODI-PROP-4040", "property source not found")

	// ErrDuplicateSource means a second source was registered under a name
	// already taken.
	ErrDuplicateSource = NewDomainError("MODI-PROP-4090", "duplicate property source name")

	// ErrInvalidSource means a source declaration lacks a name or a location.
	ErrInvalidSource = NewDomainError("MODI-PROP-4001", "invalid property source declaration")
)

// IsInitializationError reports whether err aborts initialization.
func IsInitializationError(err error) bool {
	return errors.Is(err, ErrMissingPrecondition) || errors.Is(err, ErrPostInitMutation)
}

package fault

import (
	"errors"
	"fmt"
)

// Fault is a domain error with a stable machine-readable code and the HTTP
// status it maps to. Controllers translate faults into the standard response
// envelope; everything else is treated as an infrastructure error.
type Fault struct {
	Code    string
	Status  int
	Message string
}

func (f *Fault) Error() string {
	return f.Message
}

// New creates a fault with a stable code.
func New(code string, status int, message string) *Fault {
	return &Fault{Code: code, Status: status, Message: message}
}

// Wrap returns a copy of f carrying extra detail in the message. The code and
// status are preserved so errors.Is against the sentinel still matches.
func (f *Fault) Wrap(format string, args ...interface{}) error {
	return &Fault{
		Code:    f.Code,
		Status:  f.Status,
		Message: f.Message + ": " + fmt.Sprintf(format, args...),
	}
}

// Is matches faults by code, so wrapped copies compare equal to their sentinel.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Code == f.Code
}

// From extracts a Fault from an error chain.
func From(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

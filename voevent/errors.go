package voevent

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIvorn : an insert raced or repeated an already stored ivorn.
	// Callers can treat it as "already ingested" and move on.
	ErrDuplicateIvorn = errors.New("ivorn already stored")
	// ErrVoeventNotFound : an exact ivorn lookup matched nothing.
	ErrVoeventNotFound = errors.New("voevent not found")
	// ErrConstraintViolation : a record that passed extraction still failed a
	// storage invariant. The whole transaction for that packet is rolled back.
	ErrConstraintViolation = errors.New("storage constraint violated")
)

// MalformedDocumentError : the packet is missing a required field or carries
// an invalid enumerated value. Ingestion of the packet is aborted, nothing is
// stored.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed voevent: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed voevent: %s", e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err originates from packet extraction rather
// than storage.
func IsMalformed(err error) bool {
	var m *MalformedDocumentError
	return errors.As(err, &m)
}

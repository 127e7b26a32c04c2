package driver

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInterfaceBusy reports that another program or driver holds the
	// interface. Not retryable without external intervention.
	ErrInterfaceBusy = errors.New("interface already claimed")

	// ErrDeviceGone reports that the device disconnected mid-operation.
	ErrDeviceGone = errors.New("device has been disconnected")

	// ErrNotSupported reports a configuration key the device or driver
	// does not implement.
	ErrNotSupported = errors.New("not supported")

	// ErrPendingRenumeration reports that the device's address is still
	// the sentinel: it has not yet reappeared after a firmware upload.
	ErrPendingRenumeration = errors.New("device pending renumeration, address unknown")
)

// RenumTimeoutError indicates the device did not reappear on the bus within
// the configured bound after a firmware upload.
type RenumTimeoutError struct {
	// Waited is the time elapsed since the firmware upload
	Waited time.Duration

	// Last is the error of the final re-open attempt
	Last error
}

func (e *RenumTimeoutError) Error() string {
	return fmt.Sprintf("device failed to renumerate within %v: %v", e.Waited, e.Last)
}

func (e *RenumTimeoutError) Unwrap() error {
	return e.Last
}

// OpenError indicates that the single open attempt of a device that needed
// no firmware upload failed.
type OpenError struct {
	Err error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("unable to open device: %v", e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// ClaimError indicates that claiming the interface failed after a successful
// open. Use errors.Is with ErrInterfaceBusy or ErrDeviceGone to classify it.
type ClaimError struct {
	Err error
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("unable to claim interface: %v", e.Err)
}

func (e *ClaimError) Unwrap() error {
	return e.Err
}

// ArgumentError indicates a configuration value the device cannot accept.
// The prior state is left unchanged.
type ArgumentError struct {
	Key    Key
	Value  interface{}
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s value %v: %s", e.Key, e.Value, e.Reason)
}

// InvariantError indicates a lifecycle bug in the caller, such as closing a
// device that is not open. It is a programming error, not a runtime
// condition, and must never be swallowed.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("lifecycle invariant violated in %s: %s", e.Op, e.Reason)
}

package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store, platform and engine layers.
var (
	// ErrIdentityRaceExhausted means an insert conflicted but the conflicting
	// row could not be read back afterwards.
	ErrIdentityRaceExhausted = errors.New("identity race exhausted")
	// ErrNotFound marks a platform entity that no longer exists.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidArgument rejects malformed command input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// StoreError is a failed store operation. It is not retried by the engine.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PlatformError is a failed chat platform call.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform: %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// IsNotFound reports whether err says the addressed platform entity is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// WrapStore wraps err as a StoreError unless it is nil or already classified.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || errors.Is(err, ErrIdentityRaceExhausted) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// WrapPlatform wraps err as a PlatformError unless it is nil.
func WrapPlatform(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PlatformError
	if errors.As(err, &pe) {
		return err
	}
	return &PlatformError{Op: op, Err: err}
}

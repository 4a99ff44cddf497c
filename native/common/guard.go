package common

import "errors"

// ErrHalted is returned when a guarded flow is attempted while the emergency
// stop is engaged.
var ErrHalted = errors.New("emergency stop active")

// HaltView exposes the emergency-stop flag to guarded modules without giving
// them write access to it.
type HaltView interface {
	IsHalted() bool
}

// Guard short-circuits guarded flows while the emergency stop is engaged. A
// nil view disables the guard.
func Guard(h HaltView) error {
	if h == nil {
		return nil
	}
	if h.IsHalted() {
		return ErrHalted
	}
	return nil
}

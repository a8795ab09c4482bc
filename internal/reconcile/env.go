// Package reconcile merges imported order and incident rows into the stored
// collections and manages incident state.
//
// Every exported operation is a pure transition: it takes the current
// collection(s) and returns the next one without modifying its inputs.
// Time and identifier generation come from an Env so results are
// reproducible in tests.
package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// Env supplies the clock and identifier source used by transitions.
type Env struct {
	Now   func() time.Time
	NewID func() string
}

// DefaultEnv uses the wall clock (UTC) and random UUIDs.
func DefaultEnv() Env {
	return Env{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: func() string { return uuid.New().String() },
	}
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

func (e Env) newID() string {
	if e.NewID == nil {
		return uuid.New().String()
	}
	return e.NewID()
}

package dsl

import (
	"sync"

	openschema "github.com/reoring/openschema"
)

var (
	defaultsMu      sync.RWMutex
	defaultWithTZ   *bool
	defaultUnknowns = openschema.UnknownExclude
)

// SetDefaultWithTimezone sets the timezone policy of Datetime schemas built
// without WithTimezone. nil accepts both aware and naive values.
func SetDefaultWithTimezone(v *bool) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if v == nil {
		defaultWithTZ = nil
		return
	}
	b := *v
	defaultWithTZ = &b
}

// SetDefaultUnknownFields sets the policy of models declared without Unknown.
func SetDefaultUnknownFields(p openschema.UnknownPolicy) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaultUnknowns = p
}

func withTZDefault() *bool {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultWithTZ
}

func unknownDefault() openschema.UnknownPolicy {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultUnknowns
}

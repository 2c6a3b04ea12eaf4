package goHash

import "errors"

var (
	// ErrEngineNotReady is returned by Engine methods on a nil or closed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrOverloaded is returned when the memory budget cannot admit the request.
	// Callers should retry later.
	ErrOverloaded = errors.New("hashing capacity exhausted")
	// ErrAdmissionUnavailable is returned when the cluster memory budget cannot be reached.
	ErrAdmissionUnavailable = errors.New("admission backend unavailable")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
)

package admission

import "errors"

var (
	// ErrOverloaded is returned when the memory budget cannot fit the request in time.
	ErrOverloaded = errors.New("admission: memory budget exhausted")
	// ErrRedisUnavailable is returned when the cluster budget cannot be consulted.
	ErrRedisUnavailable = errors.New("admission: redis unavailable")
)

package rate

import "errors"

var (
	// ErrRedisUnavailable wraps backend failures of [RedisStore].
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrEmptyKey is returned when a check is made without a client key.
	ErrEmptyKey = errors.New("rate key empty")
)

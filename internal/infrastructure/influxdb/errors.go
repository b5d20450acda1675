package influxdb

import "errors"

var (
	// ErrDisabled is returned by Connect when the mirror is switched off.
	ErrDisabled = errors.New("influxdb: mirror disabled in configuration")

	// ErrConnectionFailed wraps ping failures at startup.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrBucketNotFound means the configured bucket does not exist or the
	// token cannot see it.
	ErrBucketNotFound = errors.New("influxdb: bucket not found")

	// ErrInvalidTag rejects site tags that are blank or collide with the
	// per-value tags.
	ErrInvalidTag = errors.New("influxdb: invalid site tag")

	ErrNotConnected = errors.New("influxdb: not connected")
)

package cache

import "errors"

var (
	// ErrUnsupportedBackend is returned for an unknown cache.backend.
	ErrUnsupportedBackend = errors.New("unsupported cache backend")
	// ErrStorageNil is returned when a cache is built without storage.
	ErrStorageNil = errors.New("cache storage is nil")
)

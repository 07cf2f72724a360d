package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedEngine error if db.gormEngine is not sqlite, mysql or postgres.
	ErrUnsupportedEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrJWTSecretTooShort error if auth.jwtSecret has less than 32 bytes.
	ErrJWTSecretTooShort = errors.New("toml config auth.jwtSecret must have at least 32 bytes")

	// ErrUnsupportedCacheBackend error if cache.backend is unknown.
	ErrUnsupportedCacheBackend = errors.New("toml config cache.backend is not supported")
)

// Package config reads typed values from a layered configuration source.
package config

import (
	"io"
	"time"
)

// Config retrieves configuration values by dotted key. Missing keys yield the
// zero value of the requested type.
type Config interface {
	io.Closer

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer number of minutes.
	GetMinute(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray reads a list or splits a "a,b,c" value; blank elements are dropped.
	GetArray(key string) []string
}

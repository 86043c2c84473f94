//go:build !linux && !darwin

package dynlib

import (
	"errors"
	"unsafe"
)

// ErrUnsupported is returned on platforms without a dlopen-family
// implementation wired up.
var ErrUnsupported = errors.New("dynlib: unsupported platform")

// Library is a stub on unsupported platforms.
type Library struct{ path string }

// Open always fails on unsupported platforms.
func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

// Sym always fails on unsupported platforms.
func (l *Library) Sym(name string) (unsafe.Pointer, error) {
	return nil, ErrUnsupported
}

// Close is a no-op on unsupported platforms.
func (l *Library) Close() error { return nil }

// Path returns the path this Library was opened from.
func (l *Library) Path() string { return l.path }

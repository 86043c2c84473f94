//go:build !linux

package pluginhost

import "errors"

// ErrMapsUnsupported is returned by MappedGenerations on platforms with no
// /proc/self/maps equivalent wired up.
var ErrMapsUnsupported = errors.New("pluginhost: mapped-generations diagnostic unsupported on this platform")

// MappedGenerations is unsupported outside Linux.
func MappedGenerations(module string) ([]string, error) {
	return nil, ErrMapsUnsupported
}

func reportMappedGenerations(module string) {}

//go:build !linux && !darwin

package pluginhost

import "unsafe"

func callLoad(fn, state unsafe.Pointer) {}

func callUnload(fn, state unsafe.Pointer) {}

func callUpdate(fn, state unsafe.Pointer, deltaSeconds float64) {}

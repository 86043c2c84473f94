//go:build linux

package executor

import "golang.org/x/sys/unix"

// setAffinity pins the calling OS thread (must already be locked via
// runtime.LockOSThread) to coreID.
func setAffinity(coreID int) error {
	var mask unix.CPUSet
	mask.Set(coreID)
	return unix.SchedSetaffinity(0, &mask)
}

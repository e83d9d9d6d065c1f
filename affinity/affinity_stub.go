//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback for platforms with neither sched_setaffinity(2) (Linux) nor
// SetThreadAffinityMask (Windows). Reactors on these platforms still
// run correctly, just without per-reactor CPU pinning.

package affinity

import "fmt"

// setAffinityPlatform always fails: there is no pinning primitive to
// call on this platform. Callers treat the error as "affinity
// unavailable here," not as a reason to abort startup.
func setAffinityPlatform(cpuID int) error {
	return fmt.Errorf("affinity: cpu pinning not supported on this platform (requested cpu %d)", cpuID)
}

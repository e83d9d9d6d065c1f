//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows implementation via SetThreadAffinityMask, resolved lazily
// through kernel32.dll so the package still links without a direct
// syscall table dependency on this GOOS.

package affinity

import (
	"fmt"
	"runtime"
	"syscall"
)

var (
	kernel32                  = syscall.NewLazyDLL("kernel32.dll")
	procSetThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	procGetCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// setAffinityPlatform pins the calling OS thread to cpuID via a thread
// affinity mask. LockOSThread mirrors the Linux back-end: affinity is
// a property of the OS thread, and an unlocked goroutine is free to
// migrate to a different one after this call returns.
func setAffinityPlatform(cpuID int) error {
	if cpuID < 0 || cpuID >= 64 {
		return fmt.Errorf("affinity: cpu id %d out of range for a single affinity mask word", cpuID)
	}
	runtime.LockOSThread()
	hThread, _, _ := procGetCurrentThread.Call()
	mask := uintptr(1) << uint(cpuID)
	ret, _, err := procSetThreadAffinityMask.Call(hThread, mask)
	if ret == 0 {
		return fmt.Errorf("affinity: SetThreadAffinityMask: %w", err)
	}
	return nil
}

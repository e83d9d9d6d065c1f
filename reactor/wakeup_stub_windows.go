//go:build windows
// +build windows

// File: reactor/wakeup_stub_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows has no fd-based readiness model to hook a wakeup handle
// into, so New and the demultiplexer constructors simply fail with
// ErrBackendUnsupported on this platform.

package reactor

import "github.com/momentics/reactorchat/api"

func newWakeupChannel() (wakeupChannel, error) {
	return nil, api.ErrBackendUnsupported
}

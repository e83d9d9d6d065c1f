// File: workerpool/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for the worker pool.

package workerpool

import "errors"

// ErrClosed indicates the pool has been shut down and no longer
// accepts new tasks.
var ErrClosed = errors.New("workerpool: closed")

// File: acceptor/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package acceptor implements the listening-socket Handler: binds,
// listens, and on each readiness notification accepts connections
// until the kernel backlog is drained, handing each new socket to a
// connection handler registered on a designated sub-reactor.
package acceptor

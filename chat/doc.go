// File: chat/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package chat is the reference application layered on the reactor
// core: a newline-delimited JSON envelope, login, broadcast, and
// user-list bookkeeping, implementing api.AppHooks.
package chat

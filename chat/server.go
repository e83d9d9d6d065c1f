// File: chat/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server is the reference api.AppHooks implementation: session
// bookkeeping plus login/broadcast/disconnect flows. A disconnect
// before login completes stays silent — there is no username to
// announce a departure for.

package chat

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/momentics/reactorchat/api"
)

// session pairs a connection handler with the application-level
// identity the core's Handle deliberately knows nothing about.
type session struct {
	handler  api.ConnHandler
	username string
	id       uuid.UUID
}

// Server implements api.AppHooks for the newline-delimited JSON chat
// protocol. sub is the sub-reactor every connection handler it hears
// from is registered on; login and chat-message handling run as tasks
// queued back onto that reactor so they see a consistent clients map
// without a separate lock discipline for the mutation itself — mu
// still guards the map against the accept reactor's concurrent
// OnConnected calls.
type Server struct {
	sub api.Reactor

	mu      sync.Mutex
	clients map[api.Handle]*session
}

var _ api.AppHooks = (*Server)(nil)

// NewServer builds a Server whose login/broadcast tasks run on sub.
func NewServer(sub api.Reactor) *Server {
	return &Server{
		sub:     sub,
		clients: make(map[api.Handle]*session),
	}
}

// OnConnected registers a new, not-yet-logged-in session. Runs on
// whichever reactor thread owns the acceptor — typically distinct
// from sub, hence the mutex.
func (s *Server) OnConnected(handler api.ConnHandler) {
	sess := &session{handler: handler, id: uuid.New()}
	s.mu.Lock()
	s.clients[handler.Handle()] = sess
	s.mu.Unlock()
	log.Printf("chat: new connection %v (session %s)", handler.Handle(), sess.id)
}

// OnDisconnected removes the session. If the client had completed
// login, the departure is announced; an unauthenticated drop is
// silent, matching the original.
func (s *Server) OnDisconnected(h api.Handle) {
	s.mu.Lock()
	sess, ok := s.clients[h]
	if ok {
		delete(s.clients, h)
	}
	s.mu.Unlock()

	if !ok || sess.username == "" {
		return
	}
	log.Printf("chat: %v (%s) disconnected", h, sess.username)
	s.broadcastUserList()
	s.broadcastSystemNotification(sess.username+" has left the chat.", api.InvalidHandle)
}

// ProcessMessage runs on a worker-pool goroutine: decode the frame,
// then defer the actual state mutation to the sub-reactor thread so
// it never touches the clients map or a session's username directly.
func (s *Server) ProcessMessage(h api.Handle, frame []byte) {
	env, err := decodeEnvelope(frame)
	if err != nil || env.Type == "" {
		return
	}

	switch env.Type {
	case typeLoginRequest:
		username := env.Username
		if username == "" {
			return
		}
		s.sub.QueueInLoop(func() { s.handleLogin(h, username) })

	case typeChatMessage:
		text := env.Text
		s.sub.QueueInLoop(func() { s.handleChatMessage(h, text) })
	}
}

func (s *Server) handleLogin(h api.Handle, username string) {
	s.mu.Lock()
	sess, ok := s.clients[h]
	if ok {
		sess.username = username
	}
	s.mu.Unlock()

	if !ok {
		log.Printf("chat: login for unknown handle %v", h)
		return
	}
	log.Printf("chat: %v logged in as %s", h, username)
	s.broadcastSystemNotification("Welcome "+username+" to the chat room!", api.InvalidHandle)
	s.broadcastUserList()
}

func (s *Server) handleChatMessage(h api.Handle, text string) {
	s.mu.Lock()
	sess, ok := s.clients[h]
	var sender string
	if ok {
		sender = sess.username
	}
	s.mu.Unlock()

	if !ok || sender == "" || text == "" {
		return
	}
	payload, err := encodeChatMessage(sender, text)
	if err != nil {
		log.Printf("chat: encode chat message: %v", err)
		return
	}
	s.broadcast(payload, h)
}

// broadcastSystemNotification encodes and broadcasts a system
// notification, except to exceptHandle (api.InvalidHandle broadcasts
// to everyone).
func (s *Server) broadcastSystemNotification(message string, exceptHandle api.Handle) {
	payload, err := encodeSystemNotification(message)
	if err != nil {
		log.Printf("chat: encode system notification: %v", err)
		return
	}
	s.broadcast(payload, exceptHandle)
}

func (s *Server) broadcastUserList() {
	s.mu.Lock()
	usernames := make([]string, 0, len(s.clients))
	for _, sess := range s.clients {
		if sess.username != "" {
			usernames = append(usernames, sess.username)
		}
	}
	s.mu.Unlock()

	if len(usernames) == 0 {
		return
	}
	payload, err := encodeUserListUpdate(usernames)
	if err != nil {
		log.Printf("chat: encode user list: %v", err)
		return
	}
	s.broadcast(payload, api.InvalidHandle)
}

// broadcast sends payload to every connected client except
// exceptHandle. A send failure on one connection only logs — it is
// that connection's own OnError path, not the broadcast's job, to
// tear it down.
func (s *Server) broadcast(payload []byte, exceptHandle api.Handle) {
	s.mu.Lock()
	targets := make([]api.ConnHandler, 0, len(s.clients))
	for fd, sess := range s.clients {
		if fd == exceptHandle {
			continue
		}
		targets = append(targets, sess.handler)
	}
	s.mu.Unlock()

	for _, handler := range targets {
		if err := handler.SendMessage(payload); err != nil {
			log.Printf("chat: send to %v: %v", handler.Handle(), err)
		}
	}
}

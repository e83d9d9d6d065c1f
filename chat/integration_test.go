//go:build unix

package chat

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/reactorchat/acceptor"
	"github.com/momentics/reactorchat/api"
	"github.com/momentics/reactorchat/bufpool"
	"github.com/momentics/reactorchat/reactor"
	"github.com/momentics/reactorchat/workerpool"
)

// testClient wraps a raw TCP connection to the reference server with
// line-oriented helpers matching the newline-delimited envelope wire
// format.
type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialTestClient(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(v envelope) {
	c.t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(c.t, err)
	_, err = c.conn.Write(append(payload, '\n'))
	require.NoError(c.t, err)
}

func (c *testClient) login(username string) {
	c.send(envelope{Type: typeLoginRequest, Username: username})
}

func (c *testClient) chat(text string) {
	c.send(envelope{Type: typeChatMessage, Text: text})
}

func (c *testClient) recv() envelope {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	line, err := c.r.ReadBytes('\n')
	require.NoError(c.t, err)
	env, err := decodeEnvelope(line[:len(line)-1])
	require.NoError(c.t, err)
	return env
}

// recvUntil reads envelopes until one matches want, failing the test
// if none arrives before the deadline — broadcasts to other clients
// can interleave system notifications and user-list updates in either
// order.
func (c *testClient) recvUntil(want string) envelope {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		env := c.recv()
		if env.Type == want {
			return env
		}
	}
	c.t.Fatalf("did not observe envelope type %q", want)
	return envelope{}
}

type testServer struct {
	acceptReactor *reactor.Reactor
	subReactor    *reactor.Reactor
	workers       *workerpool.Pool
	addr          string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	acceptReactor, err := reactor.NewReactor(reactor.BackendSelect)
	require.NoError(t, err)
	subReactor, err := reactor.NewReactor(reactor.BackendSelect)
	require.NoError(t, err)

	pool := bufpool.New(8, 4096)
	workers := workerpool.New(4)
	server := NewServer(subReactor)

	listener, err := acceptor.New("127.0.0.1:0", subReactor, pool, workers, server)
	require.NoError(t, err)
	addr, err := listener.Addr()
	require.NoError(t, err)

	require.NoError(t, acceptReactor.Register(listener, api.Readable))

	go acceptReactor.Run()
	go subReactor.Run()

	ts := &testServer{acceptReactor: acceptReactor, subReactor: subReactor, workers: workers, addr: addr.String()}
	t.Cleanup(ts.stop)
	return ts
}

func (ts *testServer) stop() {
	ts.acceptReactor.Quit()
	ts.subReactor.Quit()
	ts.acceptReactor.Close()
	ts.subReactor.Close()
	ts.workers.Close()
}

func TestLoginReceivesWelcomeAndUserList(t *testing.T) {
	ts := startTestServer(t)
	alice := dialTestClient(t, ts.addr)

	alice.login("alice")

	welcome := alice.recvUntil(typeSystemNotification)
	require.Contains(t, welcome.Message, "alice")

	userList := alice.recvUntil(typeUserListUpdate)
	require.Equal(t, []string{"alice"}, userList.Users)
}

func TestChatMessageReachesOtherConnectedClients(t *testing.T) {
	ts := startTestServer(t)
	alice := dialTestClient(t, ts.addr)
	bob := dialTestClient(t, ts.addr)

	alice.login("alice")
	alice.recvUntil(typeUserListUpdate)

	bob.login("bob")
	bob.recvUntil(typeUserListUpdate)
	// alice sees bob's arrival broadcast before the chat message below.
	alice.recvUntil(typeUserListUpdate)

	alice.chat("hello bob")

	msg := bob.recvUntil(typeChatMessage)
	require.Equal(t, "alice", msg.Username)
	require.Equal(t, "hello bob", msg.Text)
}

func TestDisconnectAnnouncesDepartureToRemainingClients(t *testing.T) {
	ts := startTestServer(t)
	alice := dialTestClient(t, ts.addr)
	bob := dialTestClient(t, ts.addr)

	alice.login("alice")
	alice.recvUntil(typeUserListUpdate)
	bob.login("bob")
	bob.recvUntil(typeUserListUpdate)
	alice.recvUntil(typeUserListUpdate)

	require.NoError(t, alice.conn.Close())

	departure := bob.recvUntil(typeSystemNotification)
	require.Contains(t, departure.Message, "alice")
	require.Contains(t, departure.Message, "left")
}

func TestConcurrentClientsAllReceiveABroadcastMessage(t *testing.T) {
	ts := startTestServer(t)

	const clientCount = 10
	clients := make([]*testClient, clientCount)

	// Log in one at a time, waiting for the new arrival's own
	// roster to list everyone logged in so far, so the broadcast
	// below always has a fully-joined audience.
	for i := 0; i < clientCount; i++ {
		clients[i] = dialTestClient(t, ts.addr)
		clients[i].login(usernameFor(i))
		for {
			env := clients[i].recvUntil(typeUserListUpdate)
			if len(env.Users) == i+1 {
				break
			}
		}
	}

	clients[0].chat("hello everyone")

	for i := 1; i < clientCount; i++ {
		msg := clients[i].recvUntil(typeChatMessage)
		require.Equal(t, usernameFor(0), msg.Username)
		require.Equal(t, "hello everyone", msg.Text)
	}
}

func usernameFor(i int) string {
	return string(rune('a'+i)) + "-user"
}

//go:build unix

package reactor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/reactorchat/api"
)

// recordingHandler counts callback invocations and can optionally
// queue its own removal from inside OnReadable, exercising the
// self-removal-is-always-deferred discipline.
type recordingHandler struct {
	handle api.Handle

	mu           sync.Mutex
	readable     int
	writable     int
	errors       []error
	closed       bool
	removeOnRead *Reactor
}

func (h *recordingHandler) Handle() api.Handle { return h.handle }
func (h *recordingHandler) OnReadable() {
	h.mu.Lock()
	h.readable++
	r := h.removeOnRead
	h.mu.Unlock()
	if r != nil {
		r.QueueInLoop(func() { _ = r.Remove(h.handle) })
	}
}
func (h *recordingHandler) OnWritable() {
	h.mu.Lock()
	h.writable++
	h.mu.Unlock()
}
func (h *recordingHandler) OnError(err error) {
	h.mu.Lock()
	h.errors = append(h.errors, err)
	h.mu.Unlock()
}
func (h *recordingHandler) OnClose() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

func (h *recordingHandler) snapshot() (readable, writable int, closed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readable, h.writable, h.closed
}

func TestRegisterRejectsDuplicateHandle(t *testing.T) {
	demux, err := newPollDemux()
	require.NoError(t, err)
	r, err := New(demux)
	require.NoError(t, err)
	defer r.Close()

	h := &recordingHandler{handle: 999}
	require.NoError(t, r.Register(h, api.Readable))
	require.ErrorIs(t, r.Register(h, api.Readable), api.ErrDuplicateHandle)
}

func TestModifyAndRemoveRejectUnknownHandle(t *testing.T) {
	demux, err := newPollDemux()
	require.NoError(t, err)
	r, err := New(demux)
	require.NoError(t, err)
	defer r.Close()

	require.ErrorIs(t, r.Modify(api.Handle(4242), api.Readable), api.ErrUnknownHandle)
	require.ErrorIs(t, r.Remove(api.Handle(4242)), api.ErrUnknownHandle)
}

func TestQueueInLoopTasksRunInSubmissionOrderBeforeNextDispatch(t *testing.T) {
	demux, err := newPollDemux()
	require.NoError(t, err)
	r, err := New(demux)
	require.NoError(t, err)
	defer r.Close()

	var mu sync.Mutex
	var order []int

	done := make(chan struct{})
	go func() { _ = r.Run(); close(done) }()

	for i := 0; i < 5; i++ {
		i := i
		r.QueueInLoop(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 5
	}, time.Second, 5*time.Millisecond)

	r.Quit()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSelfRemovalDuringDispatchIsAlwaysDeferred(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])
	require.NoError(t, unix.SetNonblock(fds[0], true))

	demux, err := newPollDemux()
	require.NoError(t, err)
	r, err := New(demux)
	require.NoError(t, err)
	defer r.Close()

	h := &recordingHandler{handle: api.Handle(fds[0])}
	h.removeOnRead = r
	require.NoError(t, r.Register(h, api.Readable))

	done := make(chan struct{})
	go func() { _ = r.Run(); close(done) }()

	_, err = unix.Write(fds[1], []byte("x"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, _, closed := h.snapshot()
		return closed
	}, time.Second, 5*time.Millisecond)

	readable, _, _ := h.snapshot()
	require.Equal(t, 1, readable, "a removed handle must never be dispatched to again")

	r.Quit()
	<-done
}

func TestStatsReflectsRegistryAndTaskActivity(t *testing.T) {
	demux, err := newPollDemux()
	require.NoError(t, err)
	r, err := New(demux)
	require.NoError(t, err)
	defer r.Close()

	baseline := r.Stats().RegistrySize // the wakeup handler itself

	h := &recordingHandler{handle: 12345}
	require.NoError(t, r.Register(h, api.Readable))
	require.Equal(t, baseline+1, r.Stats().RegistrySize)

	done := make(chan struct{})
	go func() { _ = r.Run(); close(done) }()

	r.QueueInLoop(func() {})
	require.Eventually(t, func() bool {
		return r.Stats().TasksRun >= 1
	}, time.Second, 5*time.Millisecond)

	r.Quit()
	<-done

	require.GreaterOrEqual(t, r.Stats().Iterations, uint64(1))
}

func TestCloseRemovesEveryRemainingHandler(t *testing.T) {
	demux, err := newPollDemux()
	require.NoError(t, err)
	r, err := New(demux)
	require.NoError(t, err)

	h := &recordingHandler{handle: 55}
	require.NoError(t, r.Register(h, api.Readable))

	require.NoError(t, r.Close())

	_, _, closed := h.snapshot()
	require.True(t, closed)
	require.Equal(t, 0, r.Stats().RegistrySize)
}

package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"crypto-tracker/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeConnectivity struct {
	mu     sync.Mutex
	online bool
	events chan bool
}

func newFakeConnectivity() *fakeConnectivity {
	return &fakeConnectivity{events: make(chan bool, 16)}
}

func (f *fakeConnectivity) Start(context.Context) error { return nil }

func (f *fakeConnectivity) Stop() error { return nil }

func (f *fakeConnectivity) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeConnectivity) Subscribe() (<-chan bool, func()) {
	return f.events, func() {}
}

func (f *fakeConnectivity) signal(online bool) {
	f.mu.Lock()
	f.online = online
	f.mu.Unlock()
	f.events <- online
}

// -----------------------------------------------------------------------------

type fakeLoop struct {
	mu     sync.Mutex
	starts []int
	stops  int
}

func (f *fakeLoop) Start(fromPage int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, fromPage)
}

func (f *fakeLoop) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeLoop) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

func (f *fakeLoop) startPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.starts...)
}

func (f *fakeLoop) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// monitorLoop adapts fakeLoop to the argument-less monitor contract.
type monitorLoop struct{ *fakeLoop }

func (m monitorLoop) Start() { m.fakeLoop.Start(0) }

// -----------------------------------------------------------------------------

func testController(net *fakeConnectivity, pre *fakeLoop, mon *fakeLoop) *LifecycleController {
	cfg := &models.MConfig{
		LogLevel:  "ERROR",
		Preloader: models.MPreloaderConfig{StartPage: 1},
	}
	return NewLifecycleController(cfg, net, pre, monitorLoop{mon})
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestOnlineStartsBothLoops(t *testing.T) {
	net := newFakeConnectivity()
	pre := &fakeLoop{}
	mon := &fakeLoop{}

	c := testController(net, pre, mon)
	c.Start()
	defer c.Stop()

	net.signal(true)

	require.Eventually(t, func() bool {
		return pre.startCount() == 1 && mon.startCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []int{1}, pre.startPages())
	assert.False(t, c.IsOffline())
}

// -----------------------------------------------------------------------------

func TestDuplicateSignalsAreDeduplicated(t *testing.T) {
	net := newFakeConnectivity()
	pre := &fakeLoop{}
	mon := &fakeLoop{}

	c := testController(net, pre, mon)
	c.Start()
	defer c.Stop()

	// true, true, false, true: exactly two online reactions, one offline
	net.signal(true)
	net.signal(true)
	net.signal(false)
	net.signal(true)

	require.Eventually(t, func() bool {
		return pre.startCount() == 2 && mon.startCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, mon.stopCount())
}

// -----------------------------------------------------------------------------

func TestOfflineStopsMonitorButNotPreloader(t *testing.T) {
	net := newFakeConnectivity()
	pre := &fakeLoop{}
	mon := &fakeLoop{}

	c := testController(net, pre, mon)
	c.Start()
	defer c.Stop()

	net.signal(true)
	net.signal(false)

	require.Eventually(t, func() bool {
		return mon.stopCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The preloader holds position on its own while offline
	assert.Equal(t, 0, pre.stopCount())
	assert.True(t, c.IsOffline())
}

// -----------------------------------------------------------------------------

func TestOfflineMessageAutoClears(t *testing.T) {
	net := newFakeConnectivity()
	pre := &fakeLoop{}
	mon := &fakeLoop{}

	c := testController(net, pre, mon)
	c.Start()
	defer c.Stop()

	net.signal(false)

	require.Eventually(t, func() bool {
		return c.ShowOfflineMessage()
	}, 2*time.Second, 10*time.Millisecond)

	// The banner clears on its own; the offline state itself stays
	require.Eventually(t, func() bool {
		return !c.ShowOfflineMessage()
	}, 3*time.Second, 50*time.Millisecond)
	assert.True(t, c.IsOffline())
}

// -----------------------------------------------------------------------------

func TestLoadingClearedByFirstStoredPage(t *testing.T) {
	net := newFakeConnectivity()
	c := testController(net, &fakeLoop{}, &fakeLoop{})

	assert.True(t, c.IsLoading())

	c.PageStored(1, 50)
	assert.False(t, c.IsLoading())
}

// -----------------------------------------------------------------------------

func TestLoadingClearedByOfflineVerdict(t *testing.T) {
	net := newFakeConnectivity()
	c := testController(net, &fakeLoop{}, &fakeLoop{})
	c.Start()
	defer c.Stop()

	assert.True(t, c.IsLoading())

	net.signal(false)

	require.Eventually(t, func() bool {
		return !c.IsLoading()
	}, 2*time.Second, 10*time.Millisecond)
}

// -----------------------------------------------------------------------------

func TestStopTearsDownLoops(t *testing.T) {
	net := newFakeConnectivity()
	pre := &fakeLoop{}
	mon := &fakeLoop{}

	c := testController(net, pre, mon)
	c.Start()

	net.signal(true)
	require.Eventually(t, func() bool {
		return pre.startCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	c.Stop()

	assert.Equal(t, 1, pre.stopCount())
	assert.GreaterOrEqual(t, mon.stopCount(), 1)

	// Stop again is safe
	c.Stop()
}

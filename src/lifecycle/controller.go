package lifecycle

import (
	"context"
	"sync"
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
)

// -----------------------------------------------------------------------------

// offlineMessageDuration is how long the transient "you are offline" banner
// state stays raised after a connectivity loss.
const offlineMessageDuration = 1500 * time.Millisecond

// -----------------------------------------------------------------------------

// LifecycleController ties the connectivity signal to the background loops.
// Going online (re)starts the preloader from the first page and the price
// monitor; going offline stops the monitor and raises a transient offline
// message. Repeated same-state signals are deduplicated, so a flapping probe
// never stacks loops.
//
// The preloader is left running across offline transitions: it holds position
// on its own while the network is down and resumes where it stopped, which
// keeps catalog progress instead of restarting from page one on every blip.
type LifecycleController struct {
	Config    *models.MConfig
	Network   interfaces.IConnectivityMonitor
	Preloader interfaces.IPreloader
	Monitor   interfaces.IPriceMonitor
	Logger    *logger.Logger

	mu             sync.Mutex
	prevKnown      bool
	prevOnline     bool
	offline        bool
	loading        bool
	showOfflineMsg bool
	msgTimer       *time.Timer

	cancelFunc context.CancelFunc
	done       chan struct{}
	unsub      func()
}

// -----------------------------------------------------------------------------

func NewLifecycleController(
	cfg *models.MConfig,
	netMon interfaces.IConnectivityMonitor,
	pre interfaces.IPreloader,
	mon interfaces.IPriceMonitor,
) *LifecycleController {
	return &LifecycleController{
		Config:    cfg,
		Network:   netMon,
		Preloader: pre,
		Monitor:   mon,
		Logger:    logger.NewLogger(cfg, "Lifecycle"),
		loading:   true,
	}
}

// -----------------------------------------------------------------------------

// Start subscribes to connectivity and begins reacting to transitions. The
// subscription delivers the current state immediately, so the initial loops
// come up without waiting for the first transition.
func (c *LifecycleController) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return
	}

	events, unsub := c.Network.Subscribe()
	c.unsub = unsub

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancelFunc = cancel
	c.done = done

	go c.runLoop(ctx, events, done)
}

// -----------------------------------------------------------------------------

// Stop tears down the subscription and both background loops.
func (c *LifecycleController) Stop() {
	c.mu.Lock()
	cancel := c.cancelFunc
	done := c.done
	unsub := c.unsub
	c.cancelFunc = nil
	c.done = nil
	c.unsub = nil
	if c.msgTimer != nil {
		c.msgTimer.Stop()
		c.msgTimer = nil
	}
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	unsub()
	cancel()
	<-done

	c.Preloader.Stop()
	c.Monitor.Stop()
}

// -----------------------------------------------------------------------------

func (c *LifecycleController) runLoop(ctx context.Context, events <-chan bool, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-events:
			if !ok {
				return
			}
			c.handleSignal(online)
		}
	}
}

// -----------------------------------------------------------------------------

// handleSignal reacts to one connectivity verdict, ignoring repeats of the
// state already acted upon.
func (c *LifecycleController) handleSignal(online bool) {
	c.mu.Lock()
	if c.prevKnown && c.prevOnline == online {
		c.mu.Unlock()
		return
	}
	c.prevKnown = true
	c.prevOnline = online
	c.mu.Unlock()

	if online {
		c.handleOnline()
	} else {
		c.handleOffline()
	}
}

// -----------------------------------------------------------------------------

func (c *LifecycleController) handleOnline() {
	c.Logger.Info("Network available, starting background loops")

	c.mu.Lock()
	c.offline = false
	c.mu.Unlock()

	c.Preloader.Start(c.Config.Preloader.StartPage)
	c.Monitor.Start()
}

// -----------------------------------------------------------------------------

func (c *LifecycleController) handleOffline() {
	c.Logger.Warning("Network unavailable, suspending price monitoring")

	c.Monitor.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.offline = true
	// A definite verdict ends the initial "no data yet" phase even when it
	// is a negative one; the UI then shows the offline state instead of a
	// spinner forever.
	c.loading = false

	c.showOfflineMsg = true
	if c.msgTimer != nil {
		c.msgTimer.Stop()
	}
	c.msgTimer = time.AfterFunc(offlineMessageDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.showOfflineMsg = false
	})
}

// -----------------------------------------------------------------------------

// PageStored is wired as the preloader's per-page callback; the first stored
// page means local data exists and the initial loading phase is over.
func (c *LifecycleController) PageStored(page int, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}

// -----------------------------------------------------------------------------

func (c *LifecycleController) IsOffline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offline
}

// -----------------------------------------------------------------------------

func (c *LifecycleController) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// -----------------------------------------------------------------------------

func (c *LifecycleController) ShowOfflineMessage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showOfflineMsg
}

package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
	"crypto-tracker/src/utils"
)

// -----------------------------------------------------------------------------

// ConnectivityMonitor derives a process-wide online/offline signal by probing
// a well-known endpoint on a fixed interval. Subscribers receive the current
// state immediately and then one value per actual transition, never one per
// probe.
type ConnectivityMonitor struct {
	Config *models.MConfig
	Logger *logger.Logger

	// Probe returns whether the network is reachable. Replaceable in tests.
	Probe func(ctx context.Context) bool

	mu         sync.Mutex
	online     bool
	subs       map[int]chan bool
	nextSub    int
	cancelFunc context.CancelFunc
	done       chan struct{}
}

var _ interfaces.IConnectivityMonitor = (*ConnectivityMonitor)(nil)

// -----------------------------------------------------------------------------

func NewConnectivityMonitor(cfg *models.MConfig) *ConnectivityMonitor {
	m := &ConnectivityMonitor{
		Config: cfg,
		Logger: logger.NewLogger(cfg, "ConnectivityMonitor"),
		online: true,
		subs:   make(map[int]chan bool),
	}

	client := &http.Client{Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second}
	m.Probe = func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, cfg.Connectivity.ProbeURL, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}

	return m
}

// -----------------------------------------------------------------------------

// Start begins probing. The first verdict is established synchronously so
// subscribers created right after Start see a real state, not the default.
func (m *ConnectivityMonitor) Start(parentCtx context.Context) error {
	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return fmt.Errorf("connectivity monitor is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	m.cancelFunc = cancel
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	m.setOnline(m.Probe(ctx))

	go m.runLoop(ctx, done)
	return nil
}

// -----------------------------------------------------------------------------

func (m *ConnectivityMonitor) Stop() error {
	m.mu.Lock()
	cancel := m.cancelFunc
	done := m.done
	m.cancelFunc = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done
	return nil
}

// -----------------------------------------------------------------------------

func (m *ConnectivityMonitor) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := time.Duration(m.Config.Connectivity.ProbeIntervalSeconds) * time.Second

	for {
		if !utils.SleepCtx(ctx, interval) {
			return
		}
		m.setOnline(m.Probe(ctx))
	}
}

// -----------------------------------------------------------------------------

func (m *ConnectivityMonitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// -----------------------------------------------------------------------------

// Subscribe registers a listener. The current state is delivered immediately,
// then one value per transition.
func (m *ConnectivityMonitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++

	ch := make(chan bool, 8)
	ch <- m.online
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// -----------------------------------------------------------------------------

// setOnline records a probe verdict and broadcasts only actual transitions.
func (m *ConnectivityMonitor) setOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if online == m.online {
		return
	}

	m.online = online
	if online {
		m.Logger.Info("Connectivity restored")
	} else {
		m.Logger.Warning("Connectivity lost")
	}

	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
			// Subscriber fell too far behind; it will resync from IsConnected.
		}
	}
}

package monitor

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
	"crypto-tracker/src/utils"
)

// -----------------------------------------------------------------------------

// PriceChangeMonitor periodically compares fresh prices of favorited assets
// against the last prices known to the local store and notifies when the
// relative change crosses the configured threshold.
//
// The baseline read and the remote fetch are not isolated from a concurrent
// preloader write; a racing upsert shifts an alert by at most one cycle.
type PriceChangeMonitor struct {
	Config    *models.MConfig
	Catalog   interfaces.ICatalogClient
	Store     interfaces.IDatabase
	Favorites interfaces.IFavoritesService
	Notifier  interfaces.INotifier
	Logger    *logger.Logger

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

var _ interfaces.IPriceMonitor = (*PriceChangeMonitor)(nil)

// -----------------------------------------------------------------------------

func NewPriceChangeMonitor(
	cfg *models.MConfig,
	catalog interfaces.ICatalogClient,
	store interfaces.IDatabase,
	favs interfaces.IFavoritesService,
	notifier interfaces.INotifier,
) *PriceChangeMonitor {
	return &PriceChangeMonitor{
		Config:    cfg,
		Catalog:   catalog,
		Store:     store,
		Favorites: favs,
		Notifier:  notifier,
		Logger:    logger.NewLogger(cfg, "PriceMonitor"),
	}
}

// -----------------------------------------------------------------------------

// Start launches the monitoring loop, superseding any loop already running.
func (m *PriceChangeMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancelFunc = cancel
	m.done = done

	go m.runLoop(ctx, done)
}

// -----------------------------------------------------------------------------

// Stop cancels the active loop. Safe to call repeatedly or when already idle.
func (m *PriceChangeMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// -----------------------------------------------------------------------------

func (m *PriceChangeMonitor) stopLocked() {
	if m.cancelFunc == nil {
		return
	}

	m.cancelFunc()
	<-m.done

	m.cancelFunc = nil
	m.done = nil
}

// -----------------------------------------------------------------------------

func (m *PriceChangeMonitor) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := time.Duration(m.Config.Monitor.IntervalSeconds) * time.Second

	for {
		if !utils.SleepCtx(ctx, interval) {
			return
		}
		m.checkPrices(ctx)
	}
}

// -----------------------------------------------------------------------------

// checkPrices runs one diff cycle. Any error is logged and swallowed; only
// Stop terminates the loop.
func (m *PriceChangeMonitor) checkPrices(ctx context.Context) {
	ids := m.Favorites.List()
	if len(ids) == 0 {
		return
	}

	baseline, err := m.loadBaseline(ids)
	if err != nil {
		m.Logger.Error("Baseline read failed: %v", err)
		return
	}

	updated, err := m.Catalog.FetchByIDs(ctx, ids)
	if err != nil {
		m.Logger.Error("Price check fetch failed: %v", err)
		return
	}

	threshold := m.Config.Monitor.ChangeThreshold

	for _, crypto := range updated {
		oldPrice, ok := baseline[crypto.ID]
		if !ok {
			continue
		}

		change := math.Abs((crypto.CurrentPrice - oldPrice) / oldPrice)
		if change >= threshold {
			msg := fmt.Sprintf("%.2f%%", change*100)
			m.notify(
				fmt.Sprintf("%s Price Alert", crypto.Name),
				fmt.Sprintf("%s changed by %s", strings.ToUpper(crypto.Symbol), msg),
			)
		}
	}
}

// -----------------------------------------------------------------------------

// loadBaseline maps favorite ids to their last stored price. Ids without a
// cached record, or with a non-positive cached price, are excluded: no
// meaningful relative change can be computed for them.
func (m *PriceChangeMonitor) loadBaseline(ids []string) (map[string]float64, error) {
	cached, err := m.Store.FetchByIDs(ids)
	if err != nil {
		return nil, err
	}

	baseline := make(map[string]float64, len(cached))
	for _, c := range cached {
		if c.CurrentPrice > 0 {
			baseline[c.ID] = c.CurrentPrice
		}
	}

	return baseline, nil
}

// -----------------------------------------------------------------------------

// notify delivers one alert, containing any panic from the sink. Delivery
// problems never abort the cycle.
func (m *PriceChangeMonitor) notify(title, body string) {
	defer func() {
		if r := recover(); r != nil {
			m.Logger.Error("Notifier panicked: %v", r)
		}
	}()

	m.Notifier.Send(title, body)
}

package preloader

import (
	"context"
	"sync"
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
	"crypto-tracker/src/utils"
)

// -----------------------------------------------------------------------------

// CryptocurrencyPreloader walks the remote catalog page by page on a fixed
// cadence and upserts every page into the local store.
//
// Loop contract:
//   - offline: wait a short fixed interval and re-check, without advancing
//     the page cursor or counting a failure
//   - empty page: normal termination, the whole catalog has been seen
//   - fetch error: log, skip the page (cursor still advances; bounded retry
//     already happened one layer down in the network manager) and continue
//   - Start supersedes any running loop, Stop is idempotent
type CryptocurrencyPreloader struct {
	Config  *models.MConfig
	Catalog interfaces.ICatalogClient
	Store   interfaces.IDatabase
	Network interfaces.IConnectivityMonitor
	Logger  *logger.Logger

	// OnPageStored, when set, is invoked after each successfully persisted
	// page. The lifecycle controller uses it to clear the initial loading flag.
	OnPageStored func(page int, count int)

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

var _ interfaces.IPreloader = (*CryptocurrencyPreloader)(nil)

// -----------------------------------------------------------------------------

func NewCryptocurrencyPreloader(
	cfg *models.MConfig,
	catalog interfaces.ICatalogClient,
	store interfaces.IDatabase,
	netMon interfaces.IConnectivityMonitor,
) *CryptocurrencyPreloader {
	return &CryptocurrencyPreloader{
		Config:  cfg,
		Catalog: catalog,
		Store:   store,
		Network: netMon,
		Logger:  logger.NewLogger(cfg, "Preloader"),
	}
}

// -----------------------------------------------------------------------------

// Start launches the preload loop from the given page, cancelling any loop
// already running first so there is never more than one. A non-positive page
// is clamped to 1.
func (p *CryptocurrencyPreloader) Start(fromPage int) {
	if fromPage < 1 {
		fromPage = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancelFunc = cancel
	p.done = done

	go p.runLoop(ctx, fromPage, done)
}

// -----------------------------------------------------------------------------

// Stop cancels the active loop, waiting until it has observed cancellation at
// a suspension point. Safe to call repeatedly or when already idle.
func (p *CryptocurrencyPreloader) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// -----------------------------------------------------------------------------

func (p *CryptocurrencyPreloader) stopLocked() {
	if p.cancelFunc == nil {
		return
	}

	p.cancelFunc()
	<-p.done

	p.cancelFunc = nil
	p.done = nil
}

// -----------------------------------------------------------------------------

// IsRunning reports whether a preload loop is active.
func (p *CryptocurrencyPreloader) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

// -----------------------------------------------------------------------------

func (p *CryptocurrencyPreloader) runLoop(ctx context.Context, fromPage int, done chan struct{}) {
	defer close(done)

	pageDelay := time.Duration(p.Config.Preloader.PageDelaySeconds) * time.Second
	offlineWait := time.Duration(p.Config.Preloader.OfflineWaitSeconds) * time.Second

	page := fromPage
	p.Logger.Info("Preload starting from page %d", page)

	for ctx.Err() == nil {
		if !p.Network.IsConnected() {
			// Offline is not a failure: hold position and re-check later.
			if !utils.SleepCtx(ctx, offlineWait) {
				return
			}
			continue
		}

		records, err := p.Catalog.FetchPage(ctx, page, models.SortMarketCap)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Skip the failed page; transport retries already happened below us.
			p.Logger.Error("Preload failed on page %d: %v", page, err)
			page++
		} else if len(records) == 0 {
			p.Logger.Info("Page %d returned empty, catalog complete", page)
			return
		} else {
			if err := p.Store.UpsertCryptocurrencies(records); err != nil {
				p.Logger.Error("Failed to store page %d: %v", page, err)
			} else {
				p.Logger.Info("Preloaded page %d (%d records)", page, len(records))
				if p.OnPageStored != nil {
					p.OnPageStored(page, len(records))
				}
			}
			page++
		}

		if !utils.SleepCtx(ctx, pageDelay) {
			return
		}
	}
}

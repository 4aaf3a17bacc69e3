package interfaces

// -----------------------------------------------------------------------------
// Background loop contracts. Start supersedes any running loop (never two
// concurrent loops per component); Stop is idempotent and cancels the loop
// at its next suspension point.
// -----------------------------------------------------------------------------

// IPreloader drives the paginated catalog synchronization loop.
type IPreloader interface {
	Start(fromPage int)
	Stop()
}

// -----------------------------------------------------------------------------

// IPriceMonitor drives the favorite price-change alert loop.
type IPriceMonitor interface {
	Start()
	Stop()
}

package interfaces

import "context"

// -----------------------------------------------------------------------------
// IConnectivityMonitor is the process-wide online/offline signal.
// -----------------------------------------------------------------------------

type IConnectivityMonitor interface {

	// Start begins watching connectivity. Cancelling the context stops it.
	Start(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Stop terminates the watcher.
	Stop() error

	// -----------------------------------------------------------------------------

	// IsConnected reports the current online state.
	IsConnected() bool

	// -----------------------------------------------------------------------------

	// Subscribe returns a channel that receives the current state immediately
	// and every subsequent transition, plus a cancel func releasing the
	// subscription. Each subscriber gets its own channel.
	Subscribe() (<-chan bool, func())
}

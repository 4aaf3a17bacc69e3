package interfaces

import "crypto-tracker/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger is the UI-facing surface: it serves the HTTP API and pushes
// updates to connected websocket clients.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Start runs the server (blocking).
	Start() error

	// -----------------------------------------------------------------------------

	// BroadcastAlert pushes a delivered alert to all connected clients.
	BroadcastAlert(alert models.MAlert)
}

package interfaces

// -----------------------------------------------------------------------------
// INotifier is the alert sink. Send is fire-and-forget: it must never panic
// or error back into the caller.
// -----------------------------------------------------------------------------

type INotifier interface {
	Send(title string, body string)
}

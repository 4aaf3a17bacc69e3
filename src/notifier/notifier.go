package notifier

import (
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
	"crypto-tracker/src/utils"
)

// -----------------------------------------------------------------------------

// AlertNotifier is the delivery sink for price alerts. Each alert is logged,
// recorded in the bounded in-memory history, and pushed to connected websocket
// clients when an exchanger is attached.
type AlertNotifier struct {
	Logger  *logger.Logger
	History *utils.AlertHistory

	// Exchanger may be nil when the app runs without the websocket surface.
	Exchanger interfaces.IDataExchanger
}

var _ interfaces.INotifier = (*AlertNotifier)(nil)

// -----------------------------------------------------------------------------

func NewAlertNotifier(cfg *models.MConfig, history *utils.AlertHistory) *AlertNotifier {
	return &AlertNotifier{
		Logger:  logger.NewLogger(cfg, "Notifier"),
		History: history,
	}
}

// -----------------------------------------------------------------------------

// Send delivers one alert. Never blocks on slow consumers and never returns
// an error: an alert that cannot reach a client is still logged and kept in
// history.
func (n *AlertNotifier) Send(title, body string) {
	alert := models.MAlert{
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	n.Logger.Info("ALERT: %s: %s", title, body)
	n.History.Append(alert)

	if n.Exchanger != nil {
		n.Exchanger.BroadcastAlert(alert)
	}
}

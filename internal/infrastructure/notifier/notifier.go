// Package notifier is the default, log-backed notification sink. Desktop
// builds swap in an OS-notification implementation; failures are swallowed
// either way.
package notifier

import (
	log "github.com/sirupsen/logrus"

	"github.com/casinocoin/cscwalletd/internal/core/ports"
)

type logNotifier struct{}

// NewLogNotifier returns a Notifier that writes notifications to the
// application log.
func NewLogNotifier() ports.Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Notify(title, body string) {
	log.WithField("title", title).Info(body)
}

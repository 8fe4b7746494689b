package notify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/mkuznecov/ticketgate/internal/kafka"
)

// Sender delivers user-facing notifications about ticket events. The current
// implementation only logs; a mail or push integration plugs in here.
type Sender struct {
	logger *log.Entry
}

func NewSender(logger *log.Entry) *Sender {
	if logger == nil {
		logger = log.New().WithField("component", "notify")
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	s.logger.WithFields(log.Fields{
		"type":   event.Type,
		"user":   event.Username,
		"ticket": event.TicketUID,
		"flight": event.FlightNumber,
	}).Info("notify user about ticket event")
	return nil
}

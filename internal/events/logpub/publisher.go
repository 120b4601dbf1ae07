// Package logpub provides the default event sink: events go to the
// structured log instead of a broker, keeping the simulation free of any
// network dependency.
package logpub

import (
	"github.com/rs/zerolog"

	"github.com/banksim/bank-account-ledger/internal/interfaces"
)

type Publisher struct {
	log zerolog.Logger
}

func NewPublisher(log zerolog.Logger) *Publisher {
	return &Publisher{log: log}
}

func (p *Publisher) Publish(topic string, event any) error {
	p.log.Info().Str("topic", topic).Interface("event", event).Msg("event published")
	return nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)

package transport

import (
	"context"
	"fmt"
	"log/slog"
)

// Inbound is one event the SMS gateway delivers: a sender's phone number
// and the message body, per §6.
type Inbound struct {
	FromNumber string
	Body       string
}

// Gateway is the narrow interface this repo expects from the external SMS
// provider client named in §6 (project id, API token, context name
// "treksafer", and a sending phone number are all configured when the
// concrete client is constructed — outside this repo's scope per §1's
// "transport adapters ... treated as external collaborators"). Subscribe
// delivers inbound events on the returned channel until ctx is canceled;
// Send replies to a specific number through the same client.
type Gateway interface {
	Subscribe(ctx context.Context) (<-chan Inbound, error)
	Send(toNumber, body string) error
}

// SMS implements the SMS gateway transport of §6: a long-running
// client-subscriber task that dispatches the router for each inbound
// event and replies through the same client, per §5's SMS transport
// discipline.
type SMS struct {
	logger  *slog.Logger
	gateway Gateway
	handler Handler
	cancel  context.CancelFunc
}

func NewSMS(logger *slog.Logger, gateway Gateway, handler Handler) *SMS {
	return &SMS{
		logger:  logger.With("component", "transport.SMS"),
		gateway: gateway,
		handler: handler,
	}
}

// Listen subscribes to the gateway and processes inbound events until ctx
// is canceled or the event channel closes.
func (s *SMS) Listen(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	events, err := s.gateway.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to sms gateway: %w", err)
	}
	s.logger.Info("sms transport subscribed")

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			s.deliver(evt)
		}
	}
}

func (s *SMS) deliver(evt Inbound) {
	reply := s.handler(evt.Body)
	if err := s.gateway.Send(evt.FromNumber, reply); err != nil {
		s.logger.Warn("sms send failed", "to", evt.FromNumber, "error", err)
	}
}

// Stop cancels the subscription context, unblocking Listen.
func (s *SMS) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

package notifier

import (
	"context"
	"sync"

	"github.com/newmeca/membership-api/internal/ports/out/notifier"
)

// Gateway is an in-memory implementation of notifier.Gateway that records
// every message. Used by tests and as a no-op local-dev gateway.
type Gateway struct {
	mu   sync.Mutex
	sent []notifier.SecondaryWelcome

	// FailWith, when non-nil, is returned from every send. Lets tests exercise
	// the notification-failure path.
	FailWith error
}

func NewGateway() *Gateway { return &Gateway{} }

func (g *Gateway) SendSecondaryWelcome(ctx context.Context, msg notifier.SecondaryWelcome) error {
	_ = ctx
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailWith != nil {
		return g.FailWith
	}
	g.sent = append(g.sent, msg)
	return nil
}

// Sent returns a copy of every recorded message.
func (g *Gateway) Sent() []notifier.SecondaryWelcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]notifier.SecondaryWelcome, len(g.sent))
	copy(out, g.sent)
	return out
}

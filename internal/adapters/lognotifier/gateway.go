// Package lognotifier delivers notifications to the structured log. It is the
// default gateway for deployments that have no mail provider configured.
package lognotifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/newmeca/membership-api/internal/ports/out/notifier"
)

type Gateway struct {
	log *zap.Logger
}

func NewGateway(log *zap.Logger) *Gateway {
	return &Gateway{log: log}
}

func (g *Gateway) SendSecondaryWelcome(_ context.Context, msg notifier.SecondaryWelcome) error {
	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.String("recipientName", msg.RecipientName),
		zap.Int("mecaID", int(msg.MecaID)),
		zap.String("membershipTypeName", msg.MembershipTypeName),
		zap.String("masterName", msg.MasterName),
	}
	if msg.ExpiresAt != nil {
		fields = append(fields, zap.Time("expiresAt", *msg.ExpiresAt))
	}
	g.log.Info("secondary welcome notification", fields...)
	return nil
}

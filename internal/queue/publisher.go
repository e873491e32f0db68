// Package queue publishes account lifecycle events to a RabbitMQ topic
// exchange. Publishing is best-effort; auth flows never fail on a broker
// problem.
package queue

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	Exchange          = "auth.events"
	KeyRegistered     = "account.registered"
	KeyLoggedIn       = "account.loggedin"
	KeyPasswordReset  = "account.password_reset"
	KeyProviderLinked = "account.provider_linked"
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(context.Context, string, string, any, string) error { return nil }
func (NoopPub) Close() error                                               { return nil }

type AccountRegistered struct {
	AccountID   primitive.ObjectID `json:"account_id"`
	DisplayName string             `json:"display_name"`
	ShortCode   string             `json:"short_code"`
	Email       string             `json:"email,omitempty"`
	Origin      string             `json:"origin"` // "local" or the provider name
}

type AccountLoggedIn struct {
	AccountID primitive.ObjectID `json:"account_id"`
	LoginID   string             `json:"login_id,omitempty"`
}

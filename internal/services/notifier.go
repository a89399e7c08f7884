package services

import (
	"context"
	"fmt"
	"time"

	"github.com/foaademad/event-test/utils"
	pubnub "github.com/pubnub/go/v7"
)

// Notifier broadcasts catalog changes to connected clients.
type Notifier interface {
	Publish(ctx context.Context, kind string, payload any) error
}

type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, string, any) error { return nil }

type PubNubConfig struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
	UserID       string
	Channel      string
}

type publishFunc func(channel string, message map[string]any) error

// PubNubNotifier publishes to a single channel behind a circuit breaker so
// an unreachable PubNub does not slow every write down.
type PubNubNotifier struct {
	channel string
	publish publishFunc
	breaker *utils.CircuitBreaker
	now     func() time.Time
}

func NewPubNubNotifier(cfg PubNubConfig) *PubNubNotifier {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UserID))
	pnCfg.PublishKey = cfg.PublishKey
	pnCfg.SubscribeKey = cfg.SubscribeKey
	pnCfg.SecretKey = cfg.SecretKey

	pn := pubnub.NewPubNub(pnCfg)

	return newPubNubNotifier(cfg.Channel, func(channel string, message map[string]any) error {
		_, _, err := pn.Publish().
			Channel(channel).
			Message(message).
			Execute()
		return err
	})
}

func newPubNubNotifier(channel string, publish publishFunc) *PubNubNotifier {
	return &PubNubNotifier{
		channel: channel,
		publish: publish,
		breaker: utils.NewCircuitBreaker("pubnub", 5, 30*time.Second),
		now:     time.Now,
	}
}

func (n *PubNubNotifier) Publish(ctx context.Context, kind string, payload any) error {
	message := map[string]any{
		"type":      kind,
		"data":      payload,
		"timestamp": n.now().Unix(),
	}

	err := n.breaker.Execute(ctx, func(context.Context) error {
		return n.publish(n.channel, message)
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", kind, n.channel, err)
	}
	return nil
}

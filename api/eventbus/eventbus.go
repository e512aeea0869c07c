// Package eventbus provides the process-wide topic bus that moves
// adapter events to the session layer.
package eventbus

import "github.com/cskr/pubsub/v2"

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 64

// UnsubFunc removes a subscription from the bus.
type UnsubFunc func()

// Token represents an active subscription to a single topic.
type Token struct {
	// C receives every value published to the subscribed topic.
	// It is closed when Unsubscribe is called.
	C chan any

	// Unsubscribe removes this subscription.
	Unsubscribe UnsubFunc
}

var bus = pubsub.New[uint, any](subscriberBuffer)

// Publish publishes data to all subscribers of the topic.
func Publish(topic uint, data any) {
	bus.Pub(data, topic)
}

// Subscribe subscribes to a topic and returns the subscription token.
func Subscribe(topic uint) Token {
	ch := bus.Sub(topic)

	return Token{
		C: ch,
		Unsubscribe: func() {
			bus.Unsub(ch, topic)
		},
	}
}

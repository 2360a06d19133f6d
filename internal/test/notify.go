package test

import (
	"context"
	"sync"

	"github.com/polkiloo/webpot/internal/adapter/notify"
)

// SentMessage is a message captured by NotifierStub.
type SentMessage struct {
	To      notify.Recipient
	Message string
}

// NotifierStub records delivered messages.
type NotifierStub struct {
	Err error

	mu   sync.Mutex
	Sent []SentMessage
}

// Notify records message or returns configured error.
func (n *NotifierStub) Notify(ctx context.Context, to notify.Recipient, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, SentMessage{To: to, Message: message})
	return nil
}

// Messages returns snapshot of delivered messages.
func (n *NotifierStub) Messages() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentMessage(nil), n.Sent...)
}

var _ notify.Notifier = (*NotifierStub)(nil)

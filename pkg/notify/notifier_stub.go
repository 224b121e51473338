package notify

import (
	"context"
	"sync"
)

type NotifierStub struct {
	mu    sync.Mutex
	calls []Notification
}

func NewNotifierStub() *NotifierStub {
	return &NotifierStub{}
}

func (n *NotifierStub) Notify(ctx context.Context, notification Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification)
}

func (n *NotifierStub) Calls() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.calls...)
}

func (n *NotifierStub) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = nil
}

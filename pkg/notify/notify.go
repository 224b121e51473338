package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/nichecal/nichecal/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindBackendQueryFailure Kind = "backend_query_failure"
)

type Notification struct {
	Id          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
	// Key ties the notification to the niche selection it was raised for.
	Key string `json:"key,omitempty"`
}

// FetchFailed is the toast raised when calendar dates for the selection
// identified by key could not be loaded.
func FetchFailed(key string) Notification {
	return Notification{
		Key:         key,
		Kind:        KindBackendQueryFailure,
		Title:       "Erro ao carregar datas",
		Description: "Não foi possível carregar as datas do calendário. Tente novamente mais tarde.",
		Variant:     "destructive",
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// BusNotifier publishes notifications on the event bus.
type BusNotifier struct {
	bus *event_bus.EventBus
}

func NewBusNotifier(bus *event_bus.EventBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) Notify(ctx context.Context, notification Notification) {
	if notification.Id == "" {
		notification.Id = uuid.NewString()
	}
	// Toasts must not be lost just because the request that failed went away.
	ctx = context.WithoutCancel(ctx)
	err := n.bus.Publish(event_bus.NewEvent(ctx, event_bus.NotificationRaisedType, event_bus.NotificationRaised{
		Id:          notification.Id,
		Kind:        string(notification.Kind),
		Title:       notification.Title,
		Description: notification.Description,
		Variant:     notification.Variant,
		Key:         notification.Key,
	}))
	if err != nil {
		log.Errorf("failed to publish notification %s: %v", notification.Id, err)
	}
}

// ToastLog keeps raised notifications until a page or API client drains them.
type ToastLog struct {
	mu      sync.Mutex
	pending []Notification
	limit   int
}

func NewToastLog(bus *event_bus.EventBus, limit int) *ToastLog {
	toasts := &ToastLog{limit: limit}
	event_bus.SubscribeTyped(bus, event_bus.NotificationRaisedType, func(e event_bus.EventT[event_bus.NotificationRaised]) error {
		log.Warnf("toast %s raised: %s: %s", e.Data.Id, e.Data.Title, e.Data.Description)
		toasts.add(Notification{
			Id:          e.Data.Id,
			Kind:        Kind(e.Data.Kind),
			Title:       e.Data.Title,
			Description: e.Data.Description,
			Variant:     e.Data.Variant,
			Key:         e.Data.Key,
		})
		return nil
	})
	return toasts
}

func (t *ToastLog) add(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, n)
	if t.limit > 0 && len(t.pending) > t.limit {
		t.pending = t.pending[len(t.pending)-t.limit:]
	}
}

// Drain returns the pending notifications and forgets them, so every toast is
// handed out once.
func (t *ToastLog) Drain() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	drained := t.pending
	t.pending = nil
	if drained == nil {
		return []Notification{}
	}
	return drained
}

// DrainFor returns and forgets only the pending notifications raised for key.
func (t *ToastLog) DrainFor(key string) []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	drained := []Notification{}
	kept := t.pending[:0]
	for _, n := range t.pending {
		if n.Key == key {
			drained = append(drained, n)
		} else {
			kept = append(kept, n)
		}
	}
	t.pending = kept
	return drained
}

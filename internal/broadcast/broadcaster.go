// Package broadcast delivers store-generated events to every connected
// observer, regardless of transport. The store and handlers depend only on
// the Broadcaster interface; an SSE hub, a Redis relay, and a no-op
// implementation sit behind it. The polling transport has no push component
// here: pollers re-fetch snapshots and diff client-side.
package broadcast

// Event names emitted by the store.
const (
	EventParticipantUpdated = "participant-updated"
	EventMessageNew         = "message-new"
	EventMessageRead        = "message-read"
	EventActivityNew        = "activity-new"
	EventInit               = "init"
)

// Event is the wire envelope shared by the SSE hub and the Redis relay.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Broadcaster fans an event out to all observers. Emit must not block the
// caller: store mutators run under the store lock and emit synchronously, so
// implementations buffer or drop rather than wait on slow consumers. For a
// single observer, delivery order matches emission order.
type Broadcaster interface {
	Emit(event string, payload any)
}

// Nop discards all events. Used in tests and polling-only deployments.
type Nop struct{}

func (Nop) Emit(string, any) {}

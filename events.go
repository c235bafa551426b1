package audiomux

import "github.com/google/uuid"

// Event is a notification kind published by the manager. Events carry no
// payload; listeners read whatever state they care about.
type Event int

const (
	// EventMasterVolumeChanged fires whenever the master volume changes,
	// whether by SetMasterVolume or by a master fade step. Delivery is
	// at-least-once per change.
	EventMasterVolumeChanged Event = iota
)

func (e Event) String() string {
	switch e {
	case EventMasterVolumeChanged:
		return "master-volume-changed"
	}
	return "unknown"
}

// Hub fans manager events out to subscribers. Like the rest of the core it
// runs on the control goroutine and carries no locks.
type Hub struct {
	subs map[uuid.UUID]func(Event)
}

func newHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]func(Event))}
}

// Subscribe registers a listener and returns the token that removes it.
func (h *Hub) Subscribe(fn func(Event)) uuid.UUID {
	id := uuid.New()
	h.subs[id] = fn
	return id
}

// Unsubscribe removes the listener registered under id, if any.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	delete(h.subs, id)
}

func (h *Hub) publish(e Event) {
	for _, fn := range h.subs {
		fn(e)
	}
}

package events

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Kind names a catalog mutation.
type Kind string

const (
	FilterCreated      Kind = "filter.create"
	FilterUpdated      Kind = "filter.update"
	FilterDeleted      Kind = "filter.delete"
	FilterValueCreated Kind = "filterValue.create"
	FilterValueUpdated Kind = "filterValue.update"
	FilterValueDeleted Kind = "filterValue.delete"
	ProductFilterAdded Kind = "productFilter.create"

	ProductAdded   Kind = "product.added"
	ProductUpdated Kind = "product.updated"
	ProductDeleted Kind = "product.deleted"

	CategoryCreated Kind = "category.create"
	CategoryUpdated Kind = "category.update"
	CategoryDeleted Kind = "category.delete"
)

// Action is the verb after the dot, e.g. "create" for "category.create".
func (k Kind) Action() string {
	if i := strings.IndexByte(string(k), '.'); i >= 0 {
		return string(k)[i+1:]
	}
	return string(k)
}

// Category levels carried in CategoryChange.Level.
const (
	LevelMain   = "mainCategory"
	LevelSub    = "subCategory"
	LevelSubSub = "subSubCategory"
)

// CategoryChange is the payload of the category kinds.
type CategoryChange struct {
	Level    string      `json:"type"`
	Category interface{} `json:"data"`
}

// Event is the envelope written to the broker.
type Event struct {
	EventType Kind        `json:"eventType"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(kind Kind, payload interface{}) Event {
	return Event{
		EventType: kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      payload,
	}
}

// Publisher delivers mutation notifications. Callers treat delivery as
// best effort.
type Publisher interface {
	Publish(ctx context.Context, kind Kind, payload interface{}) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Kind, interface{}) error {
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, kind Kind, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, NewEvent(kind, payload))
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.EventType)
	}
	return kinds
}

// Last returns the most recent event of kind, if any.
func (r *Recorder) Last(kind Kind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].EventType == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}

package account

import (
	"iter"
	"sort"
	"time"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

type EventType string

const (
	EventInstallation EventType = "installation"
	EventService      EventType = "service"
)

// Event is one entry of a customer's chronological feed. Exactly one of
// Asset and Order is set, matching Type.
type Event struct {
	Type      EventType            `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Asset     *domain.Asset        `json:"asset,omitempty"`
	Order     *domain.ServiceOrder `json:"order,omitempty"`
}

// Timeline is a merged feed of installations and service orders, newest
// first.
type Timeline struct {
	events []Event
}

// BuildTimeline merges one installation event per asset and one service
// event per order, newest first. Equal timestamps keep input order (assets
// before orders). Undated events go last.
func BuildTimeline(assets []domain.Asset, orders []domain.ServiceOrder) Timeline {
	events := make([]Event, 0, len(assets)+len(orders))
	for i := range assets {
		a := assets[i]
		var ts time.Time
		if a.InstallDate != nil {
			ts = *a.InstallDate
		}
		events = append(events, Event{Type: EventInstallation, Timestamp: ts, Asset: &a})
	}
	for i := range orders {
		o := orders[i]
		events = append(events, Event{Type: EventService, Timestamp: o.RequestedAt, Order: &o})
	}

	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].Timestamp, events[j].Timestamp
		if ti.IsZero() || tj.IsZero() {
			return !ti.IsZero() && tj.IsZero()
		}
		return ti.After(tj)
	})
	return Timeline{events: events}
}

// Len returns the number of events.
func (t Timeline) Len() int { return len(t.events) }

// All yields events in feed order without copying the whole list.
func (t Timeline) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range t.events {
			if !yield(e) {
				return
			}
		}
	}
}

// Page returns at most limit events starting at offset. A non-positive
// limit returns everything from offset.
func (t Timeline) Page(offset, limit int) []Event {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t.events) {
		return []Event{}
	}
	end := len(t.events)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]Event, end-offset)
	copy(out, t.events[offset:end])
	return out
}

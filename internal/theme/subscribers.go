package theme

import (
	"slices"

	"github.com/google/uuid"
)

// ChangeKind distinguishes selection changes from registry changes.
type ChangeKind int

const (
	// ChangeSelection means the current theme changed.
	ChangeSelection ChangeKind = iota
	// ChangeRegistry means a theme was added or removed; the selection is unchanged.
	ChangeRegistry
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSelection:
		return "selection"
	case ChangeRegistry:
		return "registry"
	default:
		return "unknown"
	}
}

// Change describes one notification. For ChangeRegistry, Old and New are
// both the current theme.
type Change struct {
	Kind ChangeKind
	Old  Theme
	New  Theme
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id uuid.UUID
}

func (s Subscription) String() string {
	return s.id.String()
}

type subscriber struct {
	handle Subscription
	fn     func(Change)
}

// subscriberList keeps subscribers in subscription order.
type subscriberList struct {
	entries []subscriber
}

func (l *subscriberList) add(fn func(Change)) Subscription {
	handle := Subscription{id: uuid.New()}
	l.entries = append(l.entries, subscriber{handle: handle, fn: fn})
	return handle
}

func (l *subscriberList) remove(handle Subscription) bool {
	i := slices.IndexFunc(l.entries, func(s subscriber) bool { return s.handle == handle })
	if i < 0 {
		return false
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	return true
}

func (l *subscriberList) snapshot() []subscriber {
	return slices.Clone(l.entries)
}

func (l *subscriberList) len() int {
	return len(l.entries)
}

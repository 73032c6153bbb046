package models

import (
	"fmt"
	"sort"
	"time"
)

// Event packs an (event type, schedule time) pair into a single opaque
// token: the type code occupies the top 8 bits and the Unix schedule time
// the low 56 bits. Events are immutable once encoded.
type Event uint64

// timeMask extracts the 56-bit schedule time from an Event.
const timeMask = (uint64(1) << 56) - 1

// EncodeEvent packs an event type and a Unix schedule time.
func EncodeEvent(et EventType, scheduleTime int64) Event {
	return Event(uint64(et)<<56 | uint64(scheduleTime)&timeMask)
}

// Type returns the event type encoded in e.
func (e Event) Type() EventType {
	return EventType(uint64(e) >> 56)
}

// ScheduleTime returns the Unix schedule time encoded in e. Zero is the
// "unset" sentinel.
func (e Event) ScheduleTime() int64 {
	return int64(uint64(e) & timeMask)
}

// Decode unpacks the event into its (type, schedule time) pair.
func (e Event) Decode() (EventType, int64) {
	return e.Type(), e.ScheduleTime()
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%s", e.Type(),
		time.Unix(e.ScheduleTime(), 0).UTC().Format("2006-01-02"))
}

// ════════════════════════════════════════════════════════════════════
// Canonical Ordering
// ════════════════════════════════════════════════════════════════════

// Less reports whether a precedes b in the canonical schedule order:
// events with an unset (zero) schedule time sort last; otherwise ascending
// schedule time, ties broken by ascending event-type code, which acts as
// the same-instant priority.
func Less(a, b Event) bool {
	at, bt := a.ScheduleTime(), b.ScheduleTime()
	if at == 0 || bt == 0 {
		return at != 0 && bt == 0
	}
	if at != bt {
		return at < bt
	}
	return a.Type() < b.Type()
}

// SortEvents orders a schedule in place by the canonical ordering. The sort
// is stable: events equal under both keys keep their relative order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return Less(events[i], events[j]) })
}

// MergeSchedules concatenates schedule segments, sorts the result
// canonically, and drops duplicate events. The inputs are not modified.
func MergeSchedules(segments ...[]Event) []Event {
	var merged []Event
	for _, seg := range segments {
		merged = append(merged, seg...)
	}
	SortEvents(merged)

	out := merged[:0]
	var prev Event
	for i, ev := range merged {
		if i > 0 && ev == prev {
			continue
		}
		out = append(out, ev)
		prev = ev
	}
	return out
}

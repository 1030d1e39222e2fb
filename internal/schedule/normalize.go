package schedule

import "sort"

// Sort orders events ascending by parsed start time, in place.
//
// The model is contractually responsible for returning sorted schedules, but
// we re-sort before trusting any list that crossed the provider boundary. The
// sort is stable so events sharing a start time keep the model's ordering.
func Sort(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartMinutes() < events[j].StartMinutes()
	})
}

// IsSorted reports whether events are already in chronological order.
func IsSorted(events []Event) bool {
	return sort.SliceIsSorted(events, func(i, j int) bool {
		return events[i].StartMinutes() < events[j].StartMinutes()
	})
}

// SplitAt partitions events into those starting before currentMinutes and
// those starting at or after it. Events in the first slice are immutable as
// far as schedule mutations are concerned.
func SplitAt(events []Event, currentMinutes int) (past, upcoming []Event) {
	for _, e := range events {
		if e.StartMinutes() < currentMinutes {
			past = append(past, e)
		} else {
			upcoming = append(upcoming, e)
		}
	}
	return past, upcoming
}

// Overlaps reports whether an event starting at startMinutes with the given
// duration would overlap any existing upcoming event, and returns the first
// conflicting event if so.
func Overlaps(events []Event, startMinutes, durationMinutes int) (Event, bool) {
	end := startMinutes + durationMinutes
	for _, e := range events {
		s := e.StartMinutes()
		d := e.DurationSeconds() / 60
		if startMinutes < s+d && s < end {
			return e, true
		}
	}
	return Event{}, false
}

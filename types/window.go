package types

import "time"

// Window is a half-open time interval [Start, End) in UTC used to slice
// the event history. Windows are anchored to the moment of computation,
// not aligned to calendar days.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LastDays returns a window covering the trailing n days ending now
func LastDays(n int) Window {
	now := time.Now().UTC()
	return Window{
		Start: now.AddDate(0, 0, -n),
		End:   now,
	}
}

// Previous returns the adjacent window of equal length immediately before w
func (w Window) Previous() Window {
	length := w.End.Sub(w.Start)
	return Window{
		Start: w.Start.Add(-length),
		End:   w.Start,
	}
}

// Contains reports whether t falls inside the window.
// Start is inclusive, End is exclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the window length in whole days, never less than 1
func (w Window) Days() int {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

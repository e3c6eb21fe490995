package events

// Feed is a bounded list of events, newest first. Re-delivered logs are
// ignored.
type Feed struct {
	rows []Event
	max  int
	seen map[string]struct{}
}

// NewFeed creates a feed holding at most max rows.
func NewFeed(max int) *Feed {
	return &Feed{max: max, seen: make(map[string]struct{})}
}

// Push adds events given in chain order and returns how many were new.
func (f *Feed) Push(evs ...Event) int {
	added := 0
	for _, ev := range evs {
		key := ev.Key()
		if _, dup := f.seen[key]; dup {
			continue
		}
		f.seen[key] = struct{}{}
		f.rows = append([]Event{ev}, f.rows...)
		added++
	}
	if f.max > 0 && len(f.rows) > f.max {
		for _, ev := range f.rows[f.max:] {
			delete(f.seen, ev.Key())
		}
		f.rows = f.rows[:f.max]
	}
	return added
}

// Rows returns the events, newest first.
func (f *Feed) Rows() []Event { return f.rows }

// Len is the number of rows held.
func (f *Feed) Len() int { return len(f.rows) }

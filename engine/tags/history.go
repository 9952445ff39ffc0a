package tags

// History is the session's undo log of toggles
type History struct {
	events []Event
}

// Push records a toggle
func (h *History) Push(e Event) {
	h.events = append(h.events, e)
}

// Pop removes and returns the most recent toggle
func (h *History) Pop() (Event, bool) {
	if len(h.events) == 0 {
		return Event{}, false
	}
	e := h.events[len(h.events)-1]
	h.events = h.events[:len(h.events)-1]
	return e, true
}

// Len returns the number of undoable toggles
func (h *History) Len() int {
	return len(h.events)
}

// Undo pops the last toggle and reverts it in s
func (h *History) Undo(s *Store) (Event, bool) {
	e, ok := h.Pop()
	if !ok {
		return Event{}, false
	}
	s.Revert(e)
	return e, true
}

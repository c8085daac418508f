package worker

// SeenSet holds the ids of listings already notified. It only grows, and it
// is owned by the worker goroutine; it is not safe for concurrent use.
type SeenSet struct {
	ids map[string]struct{}
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

// Add inserts id and reports whether it was new
func (s *SeenSet) Add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Contains reports whether id was seen before
func (s *SeenSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids seen
func (s *SeenSet) Len() int {
	return len(s.ids)
}

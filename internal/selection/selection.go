// Package selection tracks which single movie, if any, is open for the
// detail view.
package selection

// State is the Closed / Open(id) machine. The zero value is Closed.
type State struct {
	id  string
	gen uint64
}

// Select opens id, or closes it if id is already the open one. It returns
// true when the result is Open.
func (s *State) Select(id string) bool {
	s.gen++
	if s.id == id {
		s.id = ""
		return false
	}
	s.id = id
	return id != ""
}

// Close returns to Closed from any state.
func (s *State) Close() {
	s.gen++
	s.id = ""
}

// Open reports the open id.
func (s State) Open() (string, bool) {
	return s.id, s.id != ""
}

// IsOpen reports whether id is the open movie.
func (s State) IsOpen(id string) bool {
	return s.id != "" && s.id == id
}

// Generation increases on every transition. Work started for a selection
// carries the generation it was started under.
func (s State) Generation() uint64 {
	return s.gen
}

// Accept reports whether a result for id started under gen still matches the
// current selection.
func (s State) Accept(id string, gen uint64) bool {
	return gen == s.gen && s.IsOpen(id)
}

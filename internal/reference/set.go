package reference

// Set keeps References unique by Key in first-insertion order.
type Set struct {
	index map[string]int
	items []*Reference
}

func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add inserts r unless an equal Reference is present. It reports whether r
// was added.
func (s *Set) Add(r *Reference) bool {
	k := r.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, r)
	return true
}

// Get returns the Reference stored under the same key as r.
func (s *Set) Get(key string) *Reference {
	if i, ok := s.index[key]; ok {
		return s.items[i]
	}
	return nil
}

func (s *Set) Len() int {
	return len(s.items)
}

// Items returns the References in insertion order.
func (s *Set) Items() []*Reference {
	return append([]*Reference(nil), s.items...)
}

// Checkable returns the References the detector runs.
func (s *Set) Checkable() []*Reference {
	var out []*Reference
	for _, r := range s.items {
		if r.Checkable() {
			out = append(out, r)
		}
	}
	return out
}

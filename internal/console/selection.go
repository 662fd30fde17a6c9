package console

// Selection is an insertion-ordered set of record identifiers for one record kind.
type Selection struct {
	ids   map[string]struct{}
	order []string
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected identifiers.
func (s *Selection) Len() int {
	return len(s.order)
}

// Add selects id. Empty ids are ignored.
func (s *Selection) Add(id string) {
	if id == "" || s.Has(id) {
		return
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}

// Remove deselects id.
func (s *Selection) Remove(id string) {
	if !s.Has(id) {
		return
	}
	delete(s.ids, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle flips the membership of id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return s.Has(id)
}

// SelectAll adds every id of the visible rows.
func (s *Selection) SelectAll(visible []string) {
	for _, id := range visible {
		s.Add(id)
	}
}

// DeselectAll removes every id of the visible rows.
func (s *Selection) DeselectAll(visible []string) {
	for _, id := range visible {
		s.Remove(id)
	}
}

// AllSelected reports whether every visible id is selected; false for an empty page.
func (s *Selection) AllSelected(visible []string) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Retain drops every selected id for which keep returns false.
func (s *Selection) Retain(keep func(id string) bool) {
	kept := s.order[:0]
	for _, id := range s.order {
		if keep(id) {
			kept = append(kept, id)
			continue
		}
		delete(s.ids, id)
	}
	s.order = kept
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
	s.order = nil
}

// IDs returns the selected identifiers in selection order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

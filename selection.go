package fieldselector

// Selection is the resolved set of field names for a single request. It is
// immutable once built; the zero value is an empty selection.
type Selection struct {
	ordered []string
	members map[string]bool
}

// NewSelection builds a Selection from the given field names, deduplicating
// while preserving first-seen order. No schema validation is performed, so
// externally assembled field sets can drive FilterMap and FilterEntries
// directly.
func NewSelection(fields ...string) Selection {
	members := make(map[string]bool, len(fields))
	ordered := make([]string, 0, len(fields))
	for _, f := range fields {
		if !members[f] {
			members[f] = true
			ordered = append(ordered, f)
		}
	}
	return Selection{ordered: ordered, members: members}
}

// Include reports whether the named field is in the selection.
func (s Selection) Include(field string) bool {
	return s.members[field]
}

// Fields returns the selected field names in resolution order. The returned
// slice is a copy; mutating it does not affect the selection.
func (s Selection) Fields() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of selected fields.
func (s Selection) Len() int {
	return len(s.ordered)
}

package resolve

import "sort"

// ChangeSet is the read-only set of final identifiers that at least one
// record reached through a substitution.
type ChangeSet struct {
	ids map[string]struct{}
}

func (c ChangeSet) Contains(id string) bool {
	_, ok := c.ids[id]
	return ok
}

func (c ChangeSet) Len() int {
	return len(c.ids)
}

// Sorted returns the identifiers in lexical order.
func (c ChangeSet) Sorted() []string {
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Tracker accumulates a ChangeSet. Not safe for concurrent use; give each
// worker its own and Merge afterwards.
type Tracker struct {
	ids map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{ids: map[string]struct{}{}}
}

func (t *Tracker) Observe(res ResolvedIdentifier) {
	if !res.Changed {
		return
	}
	t.ids[res.Final] = struct{}{}
}

func (t *Tracker) Merge(other *Tracker) {
	if other == nil {
		return
	}
	for id := range other.ids {
		t.ids[id] = struct{}{}
	}
}

// ChangeSet snapshots the accumulated identifiers.
func (t *Tracker) ChangeSet() ChangeSet {
	ids := make(map[string]struct{}, len(t.ids))
	for id := range t.ids {
		ids[id] = struct{}{}
	}
	return ChangeSet{ids: ids}
}

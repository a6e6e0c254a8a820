package mapping

import (
	"fmt"

	"partmap/internal/util"
)

// TierSpec names the anchor (old) and target (new) columns of one lookup tier.
type TierSpec struct {
	Name string
	Old  Field
	New  Field
}

// DefaultTiers is the resolution order: direct supersession first, then the
// four substitute aliases, each anchored on the new name.
var DefaultTiers = defaultTiers()

func defaultTiers() []TierSpec {
	specs := []TierSpec{{Name: "primary", Old: OldName, New: NewName}}
	for i := 1; i <= SubstituteTiers; i++ {
		f, _ := SubstNameField(i)
		specs = append(specs, TierSpec{Name: fmt.Sprintf("substitute%d", i), Old: f, New: NewName})
	}
	return specs
}

// Overwrite records a duplicate anchor inside one tier whose later row
// replaced an earlier, different target.
type Overwrite struct {
	Key      string
	Previous string
	Current  string
	Row      int // 1-based data row of the winning entry
}

// TierIndex is an immutable old->new lookup for one tier. Safe for
// concurrent reads once built.
type TierIndex struct {
	spec       TierSpec
	entries    map[string]string
	overwrites []Overwrite
}

// BuildTier indexes the rows where both the anchor and the target are
// non-blank. Keys and values are normalized with util.NormalizeKey. A missing
// column yields an empty tier. Duplicate anchors: the later row wins.
func BuildTier(t *Table, spec TierSpec) *TierIndex {
	idx := &TierIndex{spec: spec, entries: map[string]string{}}
	if t == nil || !t.Has(spec.Old) || !t.Has(spec.New) {
		return idx
	}

	for i := range t.Rows {
		oldKey := util.NormalizeKey(t.Value(i, spec.Old))
		newKey := util.NormalizeKey(t.Value(i, spec.New))
		if util.IsBlank(oldKey) || util.IsBlank(newKey) {
			continue
		}
		if prev, ok := idx.entries[oldKey]; ok && prev != newKey {
			idx.overwrites = append(idx.overwrites, Overwrite{Key: oldKey, Previous: prev, Current: newKey, Row: i + 1})
		}
		idx.entries[oldKey] = newKey
	}
	return idx
}

// BuildTiers builds one index per spec, preserving order.
func BuildTiers(t *Table, specs []TierSpec) []*TierIndex {
	out := make([]*TierIndex, 0, len(specs))
	for _, spec := range specs {
		out = append(out, BuildTier(t, spec))
	}
	return out
}

func (ix *TierIndex) Spec() TierSpec {
	return ix.spec
}

func (ix *TierIndex) Name() string {
	return ix.spec.Name
}

func (ix *TierIndex) Lookup(key string) (string, bool) {
	v, ok := ix.entries[key]
	return v, ok
}

func (ix *TierIndex) Len() int {
	return len(ix.entries)
}

// Overwrites lists duplicate anchors in sheet order.
func (ix *TierIndex) Overwrites() []Overwrite {
	out := make([]Overwrite, len(ix.overwrites))
	copy(out, ix.overwrites)
	return out
}

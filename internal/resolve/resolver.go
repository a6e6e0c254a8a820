// Package resolve maps raw identifiers to their canonical form through the
// ordered lookup tiers and tracks which final identifiers were produced by a
// substitution.
package resolve

import (
	"partmap/internal/mapping"
	"partmap/internal/util"
)

// ResolvedIdentifier is the outcome of resolving one raw identifier.
type ResolvedIdentifier struct {
	Raw        string
	Normalized string
	Final      string
	Changed    bool
	// Tiers names the tiers that rewrote the value, in the order applied.
	Tiers []string
}

// Resolver applies each tier exactly once, in order, to the value left by the
// previous tier. It holds no mutable state and may be shared across goroutines.
type Resolver struct {
	tiers []*mapping.TierIndex
}

func NewResolver(tiers []*mapping.TierIndex) *Resolver {
	cp := make([]*mapping.TierIndex, 0, len(tiers))
	for _, t := range tiers {
		if t != nil {
			cp = append(cp, t)
		}
	}
	return &Resolver{tiers: cp}
}

func (r *Resolver) Tiers() []*mapping.TierIndex {
	out := make([]*mapping.TierIndex, len(r.tiers))
	copy(out, r.tiers)
	return out
}

func (r *Resolver) Resolve(raw string) ResolvedIdentifier {
	normalized := util.NormalizeKey(raw)
	current := normalized

	var hits []string
	for _, tier := range r.tiers {
		next, ok := tier.Lookup(current)
		if !ok {
			continue
		}
		current = next
		hits = append(hits, tier.Name())
	}

	return ResolvedIdentifier{
		Raw:        raw,
		Normalized: normalized,
		Final:      current,
		Changed:    current != normalized,
		Tiers:      hits,
	}
}

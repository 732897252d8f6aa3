package routing

import (
	"sort"
	"strings"
)

// HazardSet holds the node ids flagged impassable for a single query.
// A nil HazardSet is empty.
type HazardSet map[string]struct{}

// NewHazardSet builds a set from ids, ignoring blanks.
func NewHazardSet(ids ...string) HazardSet {
	h := make(HazardSet, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			h[id] = struct{}{}
		}
	}
	return h
}

// ParseHazardList parses a comma-separated list such as "n12, n40,,n7".
func ParseHazardList(csv string) HazardSet {
	if strings.TrimSpace(csv) == "" {
		return HazardSet{}
	}
	return NewHazardSet(strings.Split(csv, ",")...)
}

// Contains reports whether id is flooded.
func (h HazardSet) Contains(id string) bool {
	_, ok := h[id]
	return ok
}

// With returns a copy of h that also contains ids.
func (h HazardSet) With(ids ...string) HazardSet {
	out := make(HazardSet, len(h)+len(ids))
	for id := range h {
		out[id] = struct{}{}
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the flooded ids in sorted order.
func (h HazardSet) IDs() []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package usecase

import (
	"github.com/nutrimatch/backend/internal/domain"
)

// AliasIndex maps query terms onto curated synonym groups and exact canonical
// names onto record positions. It is built once per store generation and never mutated.
type AliasIndex struct {
	groups   []domain.SynonymGroup
	memberOf map[string][]int // normalized member -> group indexes, table order
	byName   map[string][]int // raw canonical name -> record positions, store order
}

func newAliasIndex(groups []domain.SynonymGroup, records []indexedRecord) *AliasIndex {
	idx := &AliasIndex{
		groups:   make([]domain.SynonymGroup, 0, len(groups)),
		memberOf: make(map[string][]int),
		byName:   make(map[string][]int, len(records)),
	}

	for _, g := range groups {
		if g.Canonical == "" {
			continue
		}
		gi := len(idx.groups)
		idx.groups = append(idx.groups, g)
		seen := make(map[string]bool)
		for _, member := range g.Members() {
			key := Normalize(member)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			idx.memberOf[key] = append(idx.memberOf[key], gi)
		}
	}

	for pos, r := range records {
		idx.byName[r.CanonicalName] = append(idx.byName[r.CanonicalName], pos)
	}

	return idx
}

// Expand returns the query followed by every member of each curated group the
// query belongs to. Order is deterministic (query first, then groups in table
// order) and duplicates are removed.
func (x *AliasIndex) Expand(query string) []string {
	if query == "" {
		return nil
	}
	out := []string{query}
	seen := map[string]bool{query: true}

	for _, gi := range x.memberOf[Normalize(query)] {
		for _, member := range x.groups[gi].Members() {
			if member == "" || seen[member] {
				continue
			}
			seen[member] = true
			out = append(out, member)
		}
	}
	return out
}

// exactName returns record positions whose canonical name equals name (case-sensitive)
func (x *AliasIndex) exactName(name string) []int {
	return x.byName[name]
}

// Groups returns the number of curated synonym groups loaded
func (x *AliasIndex) Groups() int {
	return len(x.groups)
}

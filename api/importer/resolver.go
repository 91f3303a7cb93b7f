package importer

import (
	"log"
	"strings"
)

// Spreadsheets reference owners and properties by free-text name, not by
// stable identifiers. Resolution is deliberately restricted to
// case-insensitive substring containment with deterministic tie-breaks; when
// that is not enough the engine reports a diagnostic with suggestions
// instead of guessing.

// NameMatcher decides whether a spreadsheet candidate refers to a registered
// name. Swappable so a stricter rule (edit distance, phonetic) can replace
// containment without touching importer logic.
type NameMatcher func(candidate, registered string) bool

// ContainsMatch matches when either string contains the other,
// case-insensitively. Blank candidates never match.
func ContainsMatch(candidate, registered string) bool {
	c := strings.ToLower(normalizeCell(candidate))
	r := strings.ToLower(normalizeCell(registered))
	if c == "" || r == "" {
		return false
	}
	return strings.Contains(r, c) || strings.Contains(c, r)
}

type entityRef struct {
	ID    int64
	Label string   // display name used in diagnostics
	Names []string // all texts the entity can be referenced by
}

// Resolver looks up free-text names against one loaded population. The
// population is loaded once per import call so resolution never issues
// per-row queries.
type Resolver struct {
	refs  []entityRef
	match NameMatcher
}

func newResolver(refs []entityRef, match NameMatcher) *Resolver {
	return &Resolver{refs: refs, match: match}
}

func ownerResolver(owners []Owner, match NameMatcher) *Resolver {
	refs := make([]entityRef, 0, len(owners))
	for _, o := range owners {
		refs = append(refs, entityRef{ID: o.ID, Label: o.Name, Names: []string{o.Name}})
	}
	return newResolver(refs, match)
}

// propertyResolver matches against the property name or its address; rent
// sheets identify a property by either one.
func propertyResolver(props []Property, match NameMatcher) *Resolver {
	refs := make([]entityRef, 0, len(props))
	for _, p := range props {
		refs = append(refs, entityRef{ID: p.ID, Label: p.Name, Names: []string{p.Name, p.Address}})
	}
	return newResolver(refs, match)
}

// Resolve returns the ID of the entity the candidate refers to. With several
// hits it deterministically picks the lowest ID and logs the ambiguity; with
// none it reports false.
func (r *Resolver) Resolve(candidate string) (int64, bool) {
	var hits []entityRef
	for _, ref := range r.refs {
		for _, n := range ref.Names {
			if r.match(candidate, n) {
				hits = append(hits, ref)
				break
			}
		}
	}
	switch len(hits) {
	case 0:
		return 0, false
	case 1:
		return hits[0].ID, true
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.ID < best.ID {
			best = h
		}
	}
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Label
	}
	log.Printf("[WARN] name %q matches several entities (%s), picking %q",
		candidate, strings.Join(names, "; "), best.Label)
	return best.ID, true
}

// resolveBoth requires both texts to point at the same entity (share sheets
// give property name and address in separate columns). An empty second text
// is not constrained.
func (r *Resolver) resolveBoth(candidate, secondary string) (int64, bool) {
	id, ok := r.Resolve(candidate)
	if !ok || secondary == "" {
		return id, ok
	}
	id2, ok2 := r.Resolve(secondary)
	if ok2 && id2 == id {
		return id, true
	}
	return 0, false
}

// Suggest returns up to k display names of entities whose name shares the
// candidate's first whitespace-delimited token, so the operator can fix the
// source spreadsheet.
func (r *Resolver) Suggest(candidate string, k int) []string {
	fields := strings.Fields(strings.ToLower(normalizeCell(candidate)))
	if len(fields) == 0 || k <= 0 {
		return nil
	}
	token := fields[0]
	var out []string
	for _, ref := range r.refs {
		for _, n := range ref.Names {
			if strings.Contains(strings.ToLower(n), token) {
				out = append(out, ref.Label)
				break
			}
		}
		if len(out) == k {
			break
		}
	}
	return out
}

// suggestSuffix renders the suggestion list for diagnostics, empty when
// there is nothing useful to offer.
func (r *Resolver) suggestSuffix(candidate string) string {
	s := r.Suggest(candidate, 3)
	if len(s) == 0 {
		return ""
	}
	return " (closest: " + strings.Join(s, "; ") + ")"
}

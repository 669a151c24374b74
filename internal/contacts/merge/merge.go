// Package merge deterministically folds several canonical property lists
// into one, enforcing per-field cardinality and regenerating email groups and
// preference numbers for the combined contact.
package merge

import (
	"strconv"

	"contactvault/internal/contacts/properties"
)

// Merge folds property lists in explicit priority order: the first list wins
// ties. Callers own the ordering contract; nothing is inferred beyond slice
// position, so pass lists sorted by whatever priority the user chose.
//
// Repeatable fields accumulate across lists (duplicates survive for the user
// to curate); single-instance fields keep the first value seen. After
// folding, email groups are renumbered item1..itemN so they stay unique, with
// companion properties following their email to the new group, and prefs are
// renumbered 1..N in final order since pref values from different contacts
// are not comparable.
func Merge(lists [][]properties.Property) []properties.Property {
	type tagged struct {
		prop properties.Property
		src  int
	}

	var folded []tagged
	taken := make(map[properties.Field]bool)

	for src, list := range lists {
		for _, p := range list {
			if properties.CardinalityOf(p.Field).Single() {
				if taken[p.Field] {
					continue
				}
				taken[p.Field] = true
			}
			folded = append(folded, tagged{prop: p, src: src})
		}
	}

	// Renumber email groups. Two source contacts may both use item1, so
	// every (source, group) pair gets a fresh token, emails first in order
	// of appearance; companion key/x-pm-* properties keep pointing at their
	// email through the same pair.
	type groupKey struct {
		src   int
		group string
	}
	remapped := make(map[groupKey]string)
	next := 0
	freshGroup := func() string {
		next++
		return "item" + strconv.Itoa(next)
	}

	for i := range folded {
		if folded[i].prop.Field != properties.FieldEmail {
			continue
		}
		key := groupKey{src: folded[i].src, group: folded[i].prop.Group}
		if folded[i].prop.Group == "" {
			// Ungrouped email: mint a group but do not record a mapping
			// that other ungrouped properties could collide into.
			folded[i].prop.Group = freshGroup()
			continue
		}
		token, ok := remapped[key]
		if !ok {
			token = freshGroup()
			remapped[key] = token
		}
		folded[i].prop.Group = token
	}
	for i := range folded {
		if folded[i].prop.Field == properties.FieldEmail || folded[i].prop.Group == "" {
			continue
		}
		key := groupKey{src: folded[i].src, group: folded[i].prop.Group}
		token, ok := remapped[key]
		if !ok {
			// Orphan companion: no email in this source carries its group,
			// so the original token could collide with a minted one. It
			// gets its own fresh token, shared with siblings of the same
			// source pair.
			token = freshGroup()
			remapped[key] = token
		}
		folded[i].prop.Group = token
	}

	out := make([]properties.Property, len(folded))
	for i, t := range folded {
		out[i] = t.prop
	}

	renumberPrefs(out)
	return out
}

// renumberPrefs assigns 1..N per pref-tracked field in final list order.
func renumberPrefs(props []properties.Property) {
	counts := make(map[properties.Field]int)
	for i := range props {
		f := props[i].Field
		if !properties.IsPrefTracked(f) {
			continue
		}
		counts[f]++
		props[i].Pref = counts[f]
	}
}

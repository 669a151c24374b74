// Package dedupe groups contacts that share an identity key: a normalized
// display name or an email address. Linking is transitive, so when A links
// to B and B links to C, all three land in one group even though A and C
// share nothing directly.
package dedupe

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	pstrings "contactvault/pkg/platform/strings"
)

// Linkable is the identity projection of one contact: only what the link
// engine needs, decoded from the signed card without touching encrypted data.
type Linkable struct {
	ID     string
	Name   string
	Emails []string
}

// diacriticFold strips combining marks so "Peña" and "Pena" produce the same
// identity key.
var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName produces the case- and diacritic-insensitive identity key for
// a display name. Empty output means the name carries no identity.
func NormalizeName(name string) string {
	folded, _, err := transform.String(diacriticFold, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// NormalizeEmail produces the identity key for an email address.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ExtractMergeable returns the duplicate groups of the input: connected
// components of the share-a-key graph, computed with a union-find keyed by
// normalized identity keys (no pairwise comparison). Groups and their members
// appear in first-appearance order; singletons are dropped.
func ExtractMergeable(contacts []Linkable) [][]Linkable {
	parent := make([]int, len(contacts))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			// Keep the smaller root so component roots stay at the
			// first-seen contact.
			if ra < rb {
				parent[rb] = ra
			} else {
				parent[ra] = rb
			}
		}
	}

	owner := make(map[string]int)
	claim := func(key string, i int) {
		if key == "" {
			return
		}
		if first, ok := owner[key]; ok {
			union(first, i)
			return
		}
		owner[key] = i
	}

	for i, c := range contacts {
		if name := NormalizeName(c.Name); name != "" {
			claim("n:"+name, i)
		}
		for _, addr := range pstrings.DedupeAndTrimLower(c.Emails) {
			if addr != "" {
				claim("e:"+addr, i)
			}
		}
	}

	members := make(map[int][]Linkable)
	var roots []int
	for i, c := range contacts {
		root := find(i)
		if _, seen := members[root]; !seen {
			roots = append(roots, root)
		}
		members[root] = append(members[root], c)
	}

	var groups [][]Linkable
	for _, root := range roots {
		if group := members[root]; len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

package csvmap

import (
	"strconv"
	"strings"

	"contactvault/internal/contacts/properties"
)

// slot counts for combined properties.
const (
	nameSlots = 5
	adrSlots  = 7
	orgSlots  = 2
)

// Combine assembles one row's pre-properties into canonical properties.
// Unchecked pre-properties are dropped before grouping (they must not leave
// blank slots behind). Pre-properties sharing a CombineInto target are placed
// into a fixed-size array by CombineIndex and joined per field; standalone
// pre-properties pass through directly. Emails receive unique item groups and
// pref-tracked fields are numbered 1..N in output order.
func Combine(pres []PreProperty) []properties.Property {
	type group struct {
		target string
		field  properties.Field
		typ    string
		slots  []string
	}

	var props []properties.Property
	var groups []*group
	byTarget := make(map[string]*group)

	slotCount := func(target string) int {
		switch {
		case target == combineFN || target == combineN:
			return nameSlots
		case strings.HasPrefix(target, "adr"):
			return adrSlots
		default:
			return orgSlots
		}
	}

	for _, pre := range pres {
		if !pre.Checked {
			continue
		}
		if pre.CombineInto == "" {
			props = append(props, standalone(pre))
			continue
		}

		g, ok := byTarget[pre.CombineInto]
		if !ok {
			g = &group{
				target: pre.CombineInto,
				field:  pre.Field,
				slots:  make([]string, slotCount(pre.CombineInto)),
			}
			byTarget[pre.CombineInto] = g
			groups = append(groups, g)
		}
		if pre.CombineIndex >= 0 && pre.CombineIndex < len(g.slots) {
			g.slots[pre.CombineIndex] = pre.Value
		}
		if g.typ == "" {
			g.typ = pre.Type
		}
	}

	for _, g := range groups {
		p, ok := assemble(g.target, g.field, g.typ, g.slots)
		if !ok {
			continue
		}
		props = append(props, p)
	}

	assignEmailGroups(props)
	assignPrefs(props)
	return props
}

// assemble turns a filled slot array into one canonical property. fn joins
// with spaces, org with a semicolon; n and adr stay structured.
func assemble(target string, field properties.Field, typ string, slots []string) (properties.Property, bool) {
	p := properties.Property{Field: field, Type: typ}

	switch {
	case target == combineFN:
		var parts []string
		for _, s := range slots {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return p, false
		}
		p.Value = properties.Text(strings.Join(parts, " "))
	case properties.IsStructured(field):
		p.Value = properties.Structured(slots)
		if p.Value.IsEmpty() {
			return p, false
		}
	default:
		joined := strings.TrimRight(strings.Join(slots, ";"), ";")
		if joined == "" {
			return p, false
		}
		p.Value = properties.Text(joined)
	}
	return p, true
}

func standalone(pre PreProperty) properties.Property {
	p := properties.Property{
		Field: pre.Field,
		Type:  pre.Type,
	}
	if properties.IsStructured(pre.Field) {
		slots := make([]string, nameSlots)
		if pre.Field == properties.FieldAdr {
			slots = make([]string, adrSlots)
		}
		slots[0] = pre.Value
		if pre.Field == properties.FieldNickname {
			slots = []string{pre.Value}
		}
		p.Value = properties.Structured(slots)
	} else {
		p.Value = properties.Text(pre.Value)
	}
	return p
}

// assignEmailGroups gives every email property a unique itemN group so
// companion key/x-pm-* properties can attach to it later.
func assignEmailGroups(props []properties.Property) {
	n := 0
	for i := range props {
		if props[i].Field == properties.FieldEmail {
			n++
			props[i].Group = "item" + strconv.Itoa(n)
		}
	}
}

// assignPrefs numbers pref-tracked fields 1..N in output order.
func assignPrefs(props []properties.Property) {
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

// Contacts runs the full mapping for a standardized source: classify every
// row, then combine with all pre-properties checked. Callers that let users
// uncheck columns should use Map and Combine directly.
func Contacts(s *Source) [][]properties.Property {
	rows := Map(s)
	out := make([][]properties.Property, 0, len(rows))
	for _, pres := range rows {
		props := Combine(pres)
		if len(props) == 0 {
			continue
		}
		out = append(out, props)
	}
	return out
}

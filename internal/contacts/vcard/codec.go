// Package vcard converts between vCard text and canonical property lists.
//
// Parsing is tolerant: unknown non-extension fields are dropped silently so
// cards produced by newer clients keep working. Serialization is strict and
// bit-stable: VERSION:4.0 always comes first and every property is emitted in
// [group.]FIELD[;TYPE=t][;PREF=n]:value form with CRLF line endings.
package vcard

import (
	"io"
	"sort"
	"strconv"
	"strings"

	govcard "github.com/emersion/go-vcard"

	"contactvault/internal/contacts/properties"
	dErrors "contactvault/pkg/domain-errors"
)

// Version is the only vCard version this codec emits.
const Version = "4.0"

// Parse converts a single vCard into a canonical property list, sorted by
// preference. Structurally unreadable input (unbalanced BEGIN/END pairs)
// fails with CodeMalformedInput before any decoding happens.
func Parse(text string) ([]properties.Property, error) {
	cards, err := ParseAll(text)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, dErrors.New(dErrors.CodeMalformedInput, "no vCard found in input")
	}
	return cards[0], nil
}

// ParseAll converts a stream of concatenated vCards (a .vcf export) into one
// canonical property list per card.
func ParseAll(text string) ([][]properties.Property, error) {
	if err := checkBalance(text); err != nil {
		return nil, err
	}

	dec := govcard.NewDecoder(strings.NewReader(text))
	var out [][]properties.Property
	for {
		card, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeMalformedInput, "unreadable vCard")
		}
		out = append(out, fromCard(card))
	}
	return out, nil
}

// checkBalance rejects input whose BEGIN:VCARD / END:VCARD markers do not
// pair up. The decoder would also choke, but this gives the caller a clean
// malformed-input error before any per-line work.
func checkBalance(text string) error {
	upper := strings.ToUpper(text)
	begins := strings.Count(upper, "BEGIN:VCARD")
	ends := strings.Count(upper, "END:VCARD")
	if begins == 0 || begins != ends {
		return dErrors.Newf(dErrors.CodeMalformedInput,
			"unbalanced vCard markers: %d BEGIN, %d END", begins, ends)
	}
	return nil
}

// fromCard maps a decoded card onto the canonical model. Known fields are
// visited in vocabulary order and per-field input order is preserved, so the
// output is deterministic for deterministic input; the final stable pref sort
// then only reorders across fields.
func fromCard(card govcard.Card) []properties.Property {
	var props []properties.Property

	for _, field := range properties.KnownFields() {
		for _, f := range card[strings.ToUpper(string(field))] {
			props = append(props, fromField(field, f))
		}
	}

	// Extension fields outside the vocabulary survive as custom properties;
	// anything else unknown is dropped.
	var customKeys []string
	for key := range card {
		if _, class := properties.ParseField(key); class == properties.ClassCustom {
			customKeys = append(customKeys, key)
		}
	}
	sort.Strings(customKeys)
	for _, key := range customKeys {
		field, _ := properties.ParseField(key)
		for _, f := range card[key] {
			props = append(props, fromField(field, f))
		}
	}

	properties.SortByPref(props)
	return props
}

func fromField(field properties.Field, f *govcard.Field) properties.Property {
	p := properties.Property{
		Field: field,
		Group: strings.ToLower(f.Group),
		Type:  f.Params.Get("TYPE"),
	}

	if properties.IsPrefTracked(field) {
		if pref, err := strconv.Atoi(f.Params.Get("PREF")); err == nil && pref > 0 {
			p.Pref = pref
		}
	}

	if properties.IsStructured(field) {
		parts := splitComponents(f.Value)
		for i, part := range parts {
			parts[i] = unescapeText(part)
		}
		p.Value = properties.Structured(parts)
	} else {
		p.Value = properties.Text(unescapeText(f.Value))
	}
	return p
}

// splitComponents splits a structured value on unescaped semicolons, keeping
// backslash escapes intact for unescapeText.
func splitComponents(s string) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			cur.WriteByte(c)
			i++
			cur.WriteByte(s[i])
			continue
		}
		if c == ';' {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	return append(parts, cur.String())
}

// unescapeText reverses escapeText. Unknown escape sequences keep the
// escaped character, matching how lenient clients read them.
func unescapeText(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		if s[i] == 'n' || s[i] == 'N' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Serialize renders a canonical property list as vCard text. The forced
// VERSION:4.0 line always comes first; any version property in the input is
// discarded. Empty-valued properties are not emitted.
func Serialize(props []properties.Property) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\r\n")
	b.WriteString("VERSION:" + Version + "\r\n")

	for _, p := range props {
		if p.Field == properties.FieldVersion || p.Value.IsEmpty() {
			continue
		}
		writeLine(&b, p)
	}

	b.WriteString("END:VCARD\r\n")
	return b.String()
}

// SerializeAll renders one vCard per property list, concatenated.
func SerializeAll(lists [][]properties.Property) string {
	var b strings.Builder
	for _, props := range lists {
		b.WriteString(Serialize(props))
	}
	return b.String()
}

func writeLine(b *strings.Builder, p properties.Property) {
	if p.Group != "" {
		b.WriteString(p.Group)
		b.WriteByte('.')
	}
	b.WriteString(strings.ToUpper(string(p.Field)))
	if p.Type != "" {
		b.WriteString(";TYPE=")
		b.WriteString(p.Type)
	}
	if p.Pref > 0 && properties.IsPrefTracked(p.Field) {
		b.WriteString(";PREF=")
		b.WriteString(strconv.Itoa(p.Pref))
	}
	b.WriteByte(':')
	b.WriteString(escapedValue(p.Value))
	b.WriteString("\r\n")
}

// escapedValue renders a value for one content line. Structured components
// are escaped individually so their separating semicolons stay bare while
// literal ones inside a component survive the round trip.
func escapedValue(v properties.Value) string {
	if v.IsStructured() {
		parts := v.Parts()
		escaped := make([]string, len(parts))
		for i, part := range parts {
			escaped[i] = escapeText(part)
		}
		return strings.Join(escaped, ";")
	}
	return escapeText(v.String())
}

// escapeText applies RFC 6350 value escaping. A raw newline would otherwise
// end the content line and let the rest of the value parse as its own
// property.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "\\\n\r;,") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n', '\r':
			b.WriteString(`\n`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

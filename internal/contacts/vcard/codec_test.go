package vcard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactvault/internal/contacts/properties"
	dErrors "contactvault/pkg/domain-errors"
)

const sampleCard = "BEGIN:VCARD\r\n" +
	"VERSION:4.0\r\n" +
	"FN:Jane Roe\r\n" +
	"N:Roe;Jane;;;\r\n" +
	"ITEM1.EMAIL;PREF=2:jane@example.com\r\n" +
	"ITEM2.EMAIL;PREF=1:roe@example.com\r\n" +
	"TEL;TYPE=cell:+15551234567\r\n" +
	"X-CUSTOM-TAG:keepme\r\n" +
	"UNRECOGNIZED:dropme\r\n" +
	"END:VCARD\r\n"

func TestParseSingleCard(t *testing.T) {
	props, err := Parse(sampleCard)
	require.NoError(t, err)

	fn, ok := properties.First(props, properties.FieldFN)
	require.True(t, ok)
	assert.Equal(t, "Jane Roe", fn.Value.String())

	n, ok := properties.First(props, properties.FieldN)
	require.True(t, ok)
	assert.Equal(t, []string{"Roe", "Jane", "", "", ""}, n.Value.Parts())

	emails := properties.ByField(props, properties.FieldEmail)
	require.Len(t, emails, 2)
	// Pref sorting puts PREF=1 first regardless of input order.
	assert.Equal(t, "roe@example.com", emails[0].Value.String())
	assert.Equal(t, "item2", emails[0].Group)
	assert.Equal(t, "jane@example.com", emails[1].Value.String())

	tel, ok := properties.First(props, properties.FieldTel)
	require.True(t, ok)
	assert.Equal(t, "cell", tel.Type)

	// Extension fields survive as custom properties.
	custom, ok := properties.First(props, properties.Field("x-custom-tag"))
	require.True(t, ok)
	assert.Equal(t, "keepme", custom.Value.String())

	// Non-extension unknowns are dropped.
	_, ok = properties.First(props, properties.Field("unrecognized"))
	assert.False(t, ok)
}

func TestParseAllMultipleCards(t *testing.T) {
	text := sampleCard + "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Solo\r\nEND:VCARD\r\n"
	lists, err := ParseAll(text)
	require.NoError(t, err)
	require.Len(t, lists, 2)

	fn, ok := properties.First(lists[1], properties.FieldFN)
	require.True(t, ok)
	assert.Equal(t, "Solo", fn.Value.String())
}

func TestParseUnbalancedMarkers(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing end", "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:X\r\n"},
		{"missing begin", "VERSION:4.0\r\nFN:X\r\nEND:VCARD\r\n"},
		{"empty", ""},
		{"extra begin", "BEGIN:VCARD\r\nBEGIN:VCARD\r\nFN:X\r\nEND:VCARD\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAll(tt.text)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedInput))
		})
	}
}

func TestSerialize(t *testing.T) {
	props := []properties.Property{
		{Field: properties.FieldVersion, Value: properties.Text("3.0")},
		{Field: properties.FieldFN, Value: properties.Text("Jane Roe")},
		{Field: properties.FieldEmail, Group: "item1", Pref: 1, Value: properties.Text("jane@example.com")},
		{Field: properties.FieldTel, Type: "work", Value: properties.Text("+15550000000")},
		{Field: properties.FieldNote, Value: properties.Text("  ")},
	}
	out := Serialize(props)

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	assert.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Jane Roe",
		"item1.EMAIL;PREF=1:jane@example.com",
		"TEL;TYPE=work:+15550000000",
		"END:VCARD",
	}, lines)
}

func TestSerializeForcesVersion(t *testing.T) {
	// An input version of 3.0 never survives serialization.
	out := Serialize([]properties.Property{
		{Field: properties.FieldVersion, Value: properties.Text("3.0")},
		{Field: properties.FieldFN, Value: properties.Text("X")},
	})
	assert.Contains(t, out, "VERSION:4.0\r\n")
	assert.NotContains(t, out, "3.0")
}

func TestSerializeEscapesLineBreaks(t *testing.T) {
	// A multi-line note must stay one content line; otherwise its tail
	// would parse as injected properties of the card.
	out := Serialize([]properties.Property{
		{Field: properties.FieldFN, Value: properties.Text("Jane Roe")},
		{Field: properties.FieldNote, Value: properties.Text("line one\nUID:injected\nline two")},
	})

	assert.Contains(t, out, `NOTE:line one\nUID:injected\nline two`+"\r\n")
	assert.NotContains(t, out, "\nUID:")

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Empty(t, properties.ByField(again, properties.FieldUID))

	note, ok := properties.First(again, properties.FieldNote)
	require.True(t, ok)
	assert.Equal(t, "line one\nUID:injected\nline two", note.Value.String())
}

func TestRoundTripPreservesSpecialCharacters(t *testing.T) {
	props := []properties.Property{
		{Field: properties.FieldFN, Value: properties.Text("Jane Roe")},
		{Field: properties.FieldNote, Value: properties.Text(`semi; comma, slash\ done`)},
		{Field: properties.FieldAdr, Value: properties.Structured(
			[]string{"", "", "12; Main St", "Springfield", "", "", ""})},
	}

	again, err := Parse(Serialize(props))
	require.NoError(t, err)

	note, ok := properties.First(again, properties.FieldNote)
	require.True(t, ok)
	assert.Equal(t, `semi; comma, slash\ done`, note.Value.String())

	// The literal semicolon inside a component must not shift the ADR slots.
	adr, ok := properties.First(again, properties.FieldAdr)
	require.True(t, ok)
	assert.Equal(t, []string{"", "", "12; Main St", "Springfield", "", "", ""}, adr.Value.Parts())
}

func TestRoundTrip(t *testing.T) {
	props, err := Parse(sampleCard)
	require.NoError(t, err)

	again, err := Parse(Serialize(props))
	require.NoError(t, err)

	assert.Equal(t, props, again)
}

func TestSerializeAll(t *testing.T) {
	lists := [][]properties.Property{
		{{Field: properties.FieldFN, Value: properties.Text("A")}},
		{{Field: properties.FieldFN, Value: properties.Text("B")}},
	}
	out := SerializeAll(lists)
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VCARD"))
	assert.Equal(t, 2, strings.Count(out, "END:VCARD"))
}

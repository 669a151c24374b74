// Package properties defines the canonical in-memory representation of a
// contact property and the field vocabulary rules (cardinality, preference
// tracking, structured values) that the codecs and the merge engine enforce.
package properties

import (
	"sort"
	"strings"
)

// Field names a vCard property in canonical lowercase form. The vocabulary is
// closed: dispatch happens through exhaustive switches, never through lookup
// tables keyed by raw strings. Extension fields (x-*) outside the known set
// are carried verbatim and classified as custom.
type Field string

const (
	FieldVersion     Field = "version"
	FieldProdID      Field = "prodid"
	FieldUID         Field = "uid"
	FieldFN          Field = "fn"
	FieldN           Field = "n"
	FieldNickname    Field = "nickname"
	FieldEmail       Field = "email"
	FieldTel         Field = "tel"
	FieldAdr         Field = "adr"
	FieldOrg         Field = "org"
	FieldTitle       Field = "title"
	FieldRole        Field = "role"
	FieldNote        Field = "note"
	FieldBday        Field = "bday"
	FieldAnniversary Field = "anniversary"
	FieldURL         Field = "url"
	FieldPhoto       Field = "photo"
	FieldLogo        Field = "logo"
	FieldKey         Field = "key"
	FieldCategories  Field = "categories"
	FieldGender      Field = "gender"
	FieldLang        Field = "lang"
	FieldTZ          Field = "tz"
	FieldGeo         Field = "geo"
	FieldMember      Field = "member"
	FieldIMPP        Field = "impp"
	FieldRelated     Field = "related"
	FieldRev         Field = "rev"
	FieldSound       Field = "sound"
	FieldMIMEType    Field = "x-pm-mimetype"
	FieldEncrypt     Field = "x-pm-encrypt"
	FieldSign        Field = "x-pm-sign"
	FieldScheme      Field = "x-pm-scheme"
	FieldTLS         Field = "x-pm-tls"
)

// knownFields lists the vocabulary in a fixed order so parsers can iterate
// deterministically. Keep in sync with the constants above.
var knownFields = []Field{
	FieldVersion, FieldProdID, FieldUID, FieldFN, FieldN, FieldNickname,
	FieldEmail, FieldTel, FieldAdr, FieldOrg, FieldTitle, FieldRole,
	FieldNote, FieldBday, FieldAnniversary, FieldURL, FieldPhoto, FieldLogo,
	FieldKey, FieldCategories, FieldGender, FieldLang, FieldTZ, FieldGeo,
	FieldMember, FieldIMPP, FieldRelated, FieldRev, FieldSound,
	FieldMIMEType, FieldEncrypt, FieldSign, FieldScheme, FieldTLS,
}

// KnownFields returns the field vocabulary in canonical order. The returned
// slice must not be mutated.
func KnownFields() []Field { return knownFields }

// FieldClass is the result of classifying a raw field name.
type FieldClass int

const (
	// ClassKnown means the name is part of the closed vocabulary.
	ClassKnown FieldClass = iota
	// ClassCustom means an x- extension outside the known set; the property
	// is kept with its original name.
	ClassCustom
	// ClassUnknown means a non-extension field outside the vocabulary;
	// parsers drop it silently (forward-compatibility policy).
	ClassUnknown
)

// ParseField normalizes and classifies a raw field name.
func ParseField(name string) (Field, FieldClass) {
	lower := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range knownFields {
		if f == lower {
			return f, ClassKnown
		}
	}
	if strings.HasPrefix(string(lower), "x-") {
		return lower, ClassCustom
	}
	return lower, ClassUnknown
}

// Cardinality is the RFC-derived constraint on how many instances of a field
// one contact may carry. Merge and parse logic enforce it.
type Cardinality int

const (
	ExactlyOne Cardinality = iota
	AtMostOne
	OneOrMore
	ZeroOrMore
)

// Single reports whether the cardinality allows at most one instance.
func (c Cardinality) Single() bool {
	return c == ExactlyOne || c == AtMostOne
}

// CardinalityOf returns the declared cardinality for a field. Custom
// extension fields are repeatable.
func CardinalityOf(f Field) Cardinality {
	switch f {
	case FieldVersion, FieldFN:
		return ExactlyOne
	case FieldProdID, FieldUID, FieldN, FieldBday, FieldAnniversary, FieldGender, FieldRev:
		return AtMostOne
	case FieldNickname, FieldEmail, FieldTel, FieldAdr, FieldOrg, FieldTitle,
		FieldRole, FieldNote, FieldURL, FieldPhoto, FieldLogo, FieldKey,
		FieldCategories, FieldLang, FieldTZ, FieldGeo, FieldMember,
		FieldIMPP, FieldRelated, FieldSound,
		FieldMIMEType, FieldEncrypt, FieldSign, FieldScheme, FieldTLS:
		return ZeroOrMore
	default:
		return ZeroOrMore
	}
}

// IsPrefTracked reports whether the field participates in PREF ordering.
func IsPrefTracked(f Field) bool {
	switch f {
	case FieldFN, FieldEmail, FieldTel, FieldAdr, FieldKey:
		return true
	default:
		return false
	}
}

// IsStructured reports whether the field's value is a component array rather
// than a single string.
func IsStructured(f Field) bool {
	switch f {
	case FieldAdr, FieldN, FieldNickname:
		return true
	default:
		return false
	}
}

// Value holds either a single string or, for structured fields, an ordered
// component array. The zero Value is an empty text value.
type Value struct {
	text       string
	parts      []string
	structured bool
}

// Text builds a plain string value.
func Text(s string) Value { return Value{text: s} }

// Structured builds a component-array value.
func Structured(parts []string) Value {
	return Value{parts: parts, structured: true}
}

// IsStructured reports whether the value is a component array.
func (v Value) IsStructured() bool { return v.structured }

// Parts returns the component array; for plain values it is a single-element
// slice.
func (v Value) Parts() []string {
	if v.structured {
		return v.parts
	}
	return []string{v.text}
}

// String renders the value the way vCard serializes it: structured components
// joined by ";".
func (v Value) String() string {
	if v.structured {
		return strings.Join(v.parts, ";")
	}
	return v.text
}

// IsEmpty reports whether the value carries no content at all.
func (v Value) IsEmpty() bool {
	if !v.structured {
		return strings.TrimSpace(v.text) == ""
	}
	for _, p := range v.parts {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// Property is the canonical representation of one contact field instance.
// Properties are value objects: freely copied, never shared by pointer.
type Property struct {
	Field Field
	Type  string
	Group string
	// Pref orders repeated instances of pref-tracked fields; lower is more
	// preferred, 0 means unset.
	Pref  int
	Value Value
}

// SortByPref stably sorts properties by ascending Pref, with unset (zero)
// prefs after set ones. Input order is preserved among equal keys.
func SortByPref(props []Property) {
	sort.SliceStable(props, func(i, j int) bool {
		pi, pj := props[i].Pref, props[j].Pref
		if pi == 0 {
			return false
		}
		if pj == 0 {
			return true
		}
		return pi < pj
	})
}

// ByField collects the indices of properties carrying the given field, in
// input order.
func ByField(props []Property, f Field) []Property {
	var out []Property
	for _, p := range props {
		if p.Field == f {
			out = append(out, p)
		}
	}
	return out
}

// First returns the first property with the given field, if any.
func First(props []Property, f Field) (Property, bool) {
	for _, p := range props {
		if p.Field == f {
			return p, true
		}
	}
	return Property{}, false
}

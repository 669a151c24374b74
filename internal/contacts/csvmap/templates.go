package csvmap

import (
	"regexp"
	"strings"

	"contactvault/internal/contacts/properties"
)

// PreProperty is the CSV intermediate: one candidate property cell, not yet
// combined. A group of pre-properties sharing CombineInto is assembled, in
// CombineIndex order, into one canonical property. Unchecked pre-properties
// are excluded from combining entirely, not just blanked.
type PreProperty struct {
	Header       string
	Checked      bool
	Field        properties.Field
	Type         string
	Value        string
	CombineInto  string
	CombineIndex int
	Custom       bool
}

// Combine targets for multi-column properties. Address and organization
// targets carry the group ordinal so "Address 1" and "Address 2" columns
// assemble separately.
const (
	combineFN = "fn"
	combineN  = "n"
)

// Name-part slots. fn joins parts 0..4 with spaces; the n component array is
// [family, given, additional, prefix, suffix] per the vCard N layout.
const (
	namePrefix = iota
	nameFirst
	nameMiddle
	nameLast
	nameSuffix
)

var nSlotByNamePart = map[int]int{
	namePrefix: 3,
	nameFirst:  1,
	nameMiddle: 2,
	nameLast:   0,
	nameSuffix: 4,
}

type matcher struct {
	pattern *regexp.Regexp
	build   func(m []string, header, value string) []PreProperty
}

var matchers = []matcher{
	// Identity: each name part feeds both the fn display name and the
	// structured n property, so column order in the file cannot scramble
	// either one.
	{rx(`^(name )?prefix$|^title$`), namePart(namePrefix)},
	{rx(`^(first|given) name$`), namePart(nameFirst)},
	{rx(`^(middle|additional) name$`), namePart(nameMiddle)},
	{rx(`^((last|family) name|surname)$`), namePart(nameLast)},
	{rx(`^(name )?suffix$`), namePart(nameSuffix)},
	{rx(`^(display )?name$`), single(properties.FieldFN, "")},
	{rx(`^nickname$`), single(properties.FieldNickname, "")},

	{rx(`^e-?mail( \d+)?( address)?$|^e-?mail (\d+ )?- value$`), single(properties.FieldEmail, "")},

	{rx(`^(primary )?phone( \d+)?$`), single(properties.FieldTel, "")},
	{rx(`^home phone( \d+)?$`), single(properties.FieldTel, "home")},
	{rx(`^(business|work|company( main)?) phone( \d+)?$`), single(properties.FieldTel, "work")},
	{rx(`^(mobile|cell) phone( \d+)?$`), single(properties.FieldTel, "cell")},
	{rx(`^(home |business |work )?fax( number)?$`), single(properties.FieldTel, "fax")},
	{rx(`^pager$`), single(properties.FieldTel, "pager")},
	{rx(`^other phone$`), single(properties.FieldTel, "other")},

	// Addresses after standardization look like "[Type ]Address [N ]- Part".
	{rx(`^(\w+ )?address( \d+)? - po box$`), addressPart(0)},
	{rx(`^(\w+ )?address( \d+)? - extended address$`), addressPart(1)},
	{rx(`^(\w+ )?address( \d+)? - street( address)?$`), addressPart(2)},
	{rx(`^(\w+ )?address( \d+)? - city$`), addressPart(3)},
	{rx(`^(\w+ )?address( \d+)? - (region|state)$`), addressPart(4)},
	{rx(`^(\w+ )?address( \d+)? - (postal|zip) code$`), addressPart(5)},
	{rx(`^(\w+ )?address( \d+)? - country( \/ region)?$`), addressPart(6)},

	{rx(`^(\w+ )?organization( \d+)? - name$|^company$|^organization$`), orgPart(0)},
	{rx(`^(\w+ )?organization( \d+)? - department$|^department$`), orgPart(1)},
	{rx(`^(\w+ )?organization( \d+)? - title$|^job title$`), single(properties.FieldTitle, "")},
	{rx(`^role$`), single(properties.FieldRole, "")},

	{rx(`^birthday$`), single(properties.FieldBday, "")},
	{rx(`^anniversary$`), single(properties.FieldAnniversary, "")},
	{rx(`^(web page|website)( \d+)?$`), single(properties.FieldURL, "")},
	{rx(`^notes?$`), single(properties.FieldNote, "")},
	{rx(`^categories$`), single(properties.FieldCategories, "")},
	{rx(`^gender$`), single(properties.FieldGender, "")},
	{rx(`^language$`), single(properties.FieldLang, "")},
	{rx(`^time ?zone$`), single(properties.FieldTZ, "")},
}

func rx(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

// Classify maps one standardized header/value cell onto pre-properties.
// Headers matching no template become a custom note so no data is lost.
func Classify(header, value string) []PreProperty {
	trimmed := strings.TrimSpace(header)
	for _, m := range matchers {
		if sub := m.pattern.FindStringSubmatch(trimmed); sub != nil {
			return m.build(sub, trimmed, value)
		}
	}
	return []PreProperty{{
		Header:  header,
		Checked: true,
		Field:   properties.FieldNote,
		Value:   header + ": " + value,
		Custom:  true,
	}}
}

// Map classifies every cell of a standardized source, producing one
// pre-property slice per row. Blank cells produce nothing.
func Map(s *Source) [][]PreProperty {
	out := make([][]PreProperty, len(s.Rows))
	for ri, row := range s.Rows {
		var pres []PreProperty
		for ci, header := range s.Headers {
			value := strings.TrimSpace(row[ci])
			if value == "" {
				continue
			}
			pres = append(pres, Classify(header, value)...)
		}
		out[ri] = pres
	}
	return out
}

// single builds one standalone pre-property with an optional TYPE.
func single(field properties.Field, typ string) func(m []string, header, value string) []PreProperty {
	return func(_ []string, header, value string) []PreProperty {
		return []PreProperty{{
			Header:  header,
			Checked: true,
			Field:   field,
			Type:    typ,
			Value:   value,
		}}
	}
}

// namePart builds the paired fn/n combine entries for one name column.
func namePart(part int) func(m []string, header, value string) []PreProperty {
	return func(_ []string, header, value string) []PreProperty {
		return []PreProperty{
			{
				Header:       header,
				Checked:      true,
				Field:        properties.FieldFN,
				Value:        value,
				CombineInto:  combineFN,
				CombineIndex: part,
			},
			{
				Header:       header,
				Checked:      true,
				Field:        properties.FieldN,
				Value:        value,
				CombineInto:  combineN,
				CombineIndex: nSlotByNamePart[part],
			},
		}
	}
}

// addressPart builds one slot of the seven-component ADR layout. The group
// ordinal and folded type come from the standardized header.
func addressPart(slot int) func(m []string, header, value string) []PreProperty {
	return func(m []string, header, value string) []PreProperty {
		return []PreProperty{{
			Header:       header,
			Checked:      true,
			Field:        properties.FieldAdr,
			Type:         strings.ToLower(strings.TrimSpace(m[1])),
			Value:        value,
			CombineInto:  "adr" + ordinalSuffix(m[2]),
			CombineIndex: slot,
		}}
	}
}

// orgPart builds one slot of the organization name;department pair.
func orgPart(slot int) func(m []string, header, value string) []PreProperty {
	return func(m []string, header, value string) []PreProperty {
		ordinal := ""
		if len(m) > 2 {
			ordinal = m[2]
		}
		return []PreProperty{{
			Header:       header,
			Checked:      true,
			Field:        properties.FieldOrg,
			Value:        value,
			CombineInto:  "org" + ordinalSuffix(ordinal),
			CombineIndex: slot,
		}}
	}
}

func ordinalSuffix(captured string) string {
	trimmed := strings.TrimSpace(captured)
	if trimmed == "" {
		return ""
	}
	return "-" + trimmed
}

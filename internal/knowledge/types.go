package knowledge

import "strings"

// PersonaType is one of the closed set of personality classifications.
type PersonaType string

const (
	PersonaDriven        PersonaType = "driven"
	PersonaRelational    PersonaType = "relational"
	PersonaStable        PersonaType = "stable"
	PersonaHedonic       PersonaType = "hedonic"
	PersonaIntrospective PersonaType = "introspective"

	// PersonaUndetermined is the sentinel reported when no signal source
	// produced any vote. It is not a member of the closed type set.
	PersonaUndetermined PersonaType = "undetermined"
)

var allTypes = []PersonaType{
	PersonaDriven,
	PersonaRelational,
	PersonaStable,
	PersonaHedonic,
	PersonaIntrospective,
}

// AllTypes returns the closed persona type set in declaration order.
func AllTypes() []PersonaType {
	cp := make([]PersonaType, len(allTypes))
	copy(cp, allTypes)
	return cp
}

// ParsePersonaType converts a string into a known PersonaType.
func ParsePersonaType(value string) (PersonaType, bool) {
	normalized := PersonaType(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range allTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// IsKnown reports whether t belongs to the closed persona type set.
func (t PersonaType) IsKnown() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

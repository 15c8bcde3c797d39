package sync

import "strings"

// ParsedName is a personal name decomposed into contact fields
type ParsedName struct {
	Salutation string
	First      string
	Middle     string
	Last       string
	Suffix     string
}

var salutations = map[string]string{
	"mr":     "Mr",
	"mrs":    "Mrs",
	"ms":     "Ms",
	"miss":   "Miss",
	"dr":     "Dr",
	"prof":   "Prof",
	"rev":    "Rev",
	"sir":    "Sir",
	"madam":  "Madam",
	"mx":     "Mx",
	"master": "Master",
}

var suffixes = map[string]string{
	"jr":  "Jr",
	"sr":  "Sr",
	"ii":  "II",
	"iii": "III",
	"iv":  "IV",
	"v":   "V",
	"phd": "PhD",
	"md":  "MD",
	"esq": "Esq",
	"dds": "DDS",
}

// ParseName splits a free-form personal name into salutation, first,
// middle, last, and suffix parts. Angle brackets are stripped from every
// part; carrier payloads sometimes wrap emails or notes in them.
func ParseName(name string) ParsedName {
	cleaned := strings.NewReplacer("<", "", ">", "").Replace(name)
	tokens := strings.Fields(cleaned)

	var parsed ParsedName
	if len(tokens) == 0 {
		return parsed
	}

	if canonical, ok := salutations[normalizeNameToken(tokens[0])]; ok && len(tokens) > 1 {
		parsed.Salutation = canonical
		tokens = tokens[1:]
	}
	if len(tokens) > 1 {
		if canonical, ok := suffixes[normalizeNameToken(tokens[len(tokens)-1])]; ok {
			parsed.Suffix = canonical
			tokens = tokens[:len(tokens)-1]
		}
	}

	switch len(tokens) {
	case 0:
	case 1:
		parsed.First = tokens[0]
	case 2:
		parsed.First = tokens[0]
		parsed.Last = tokens[1]
	default:
		parsed.First = tokens[0]
		parsed.Middle = strings.Join(tokens[1:len(tokens)-1], " ")
		parsed.Last = tokens[len(tokens)-1]
	}
	return parsed
}

func normalizeNameToken(token string) string {
	return strings.ToLower(strings.TrimRight(token, ".,"))
}

package statement

import "strings"

// legacyPrefixes maps old document-type code variants to their canonical
// two-letter codes. Order matters: the first matching prefix wins.
var legacyPrefixes = []struct {
	prefix    string
	canonical string
}{
	{"FC A", "FC"},
	{"XFC X", "FC"},
	{"RC R", "RC"},
	{"XRC", "RC"},
	{"NC A", "NC"},
	{"XNC X", "NC"},
	{"NDA A", "ND"},
	{"XND X", "ND"},
}

// NormalizeDocCode trims a raw document number and collapses a recognized
// legacy type prefix into its canonical short code, preserving the remainder
// of the string. Unrecognized values come back trimmed but unchanged.
func NormalizeDocCode(raw string) string {
	value := strings.TrimSpace(raw)
	for _, entry := range legacyPrefixes {
		if strings.HasPrefix(value, entry.prefix) {
			return entry.canonical + value[len(entry.prefix):]
		}
	}
	return value
}

package topology

import "strings"

// Ordered prefix table mapping long-form interface type names and common
// abbreviations to one canonical short prefix. Order matters: longer names
// must come before abbreviations that are also their prefixes
// ("tengigabitethernet" before "te", "gigabitethernet" before "gi").
var portPrefixes = []struct {
	match  string
	canon  string
}{
	{"ethernet", "Eth"},
	{"eth", "Eth"},
	{"gigabitethernet", "Eth"},
	{"gigabit", "Eth"},
	{"gi", "Eth"},
	{"tengigabitethernet", "Eth"},
	{"tengigabit", "Eth"},
	{"te", "Eth"},
}

// NormalizePort canonicalizes a raw interface name. Empty or
// whitespace-only input yields Unknown; otherwise the result is the
// separator-normalized input with a recognized vendor prefix collapsed.
// Total function, never fails.
func NormalizePort(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), "")
	if cleaned == "" {
		return Unknown
	}

	normalized := strings.ReplaceAll(cleaned, "-", "/")
	lowered := strings.ToLower(normalized)
	for _, p := range portPrefixes {
		if strings.HasPrefix(lowered, p.match) {
			return p.canon + normalized[len(p.match):]
		}
	}
	return normalized
}

package topology

import (
	"fmt"
	"strings"
)

// pair is a two-element unordered set of strings. Device/port order within
// an observed link never affects matching.
type pair struct{ x, y string }

func unorderedPair(a, b string) pair {
	if a <= b {
		return pair{a, b}
	}
	return pair{b, a}
}

func (p pair) contains(s string) bool { return p.x == s || p.y == s }

// Diff compares intents against deduplicated As-Is links and produces
// exactly one LinkDiff per intent, in intent order. The classification is a
// strict waterfall: the first matching rule wins.
func Diff(intents []LinkIntent, asis []AsIsLink) []LinkDiff {
	byKey := map[linkKey]AsIsLink{}
	for _, link := range asis {
		byKey[linkKey{link.DeviceA, link.PortA, link.DeviceB, link.PortB}] = link
	}

	diffs := make([]LinkDiff, 0, len(intents))
	for _, intent := range intents {
		diffs = append(diffs, classify(intent, asis, byKey))
	}
	return diffs
}

func classify(intent LinkIntent, asis []AsIsLink, byKey map[linkKey]AsIsLink) LinkDiff {
	da, pa, db, pb := canonicalize(intent.DeviceA, intent.PortANorm, intent.DeviceB, intent.PortBNorm)
	if exact, ok := byKey[linkKey{da, pa, db, pb}]; ok {
		match := exact
		return LinkDiff{
			Intent: intent,
			AsIs:   &match,
			Status: StatusExactMatch,
			Reason: "normalized ports matched",
		}
	}

	candidates := findCandidates(intent, asis)
	if len(candidates) > 1 {
		return LinkDiff{
			Intent: intent,
			Status: StatusUnknown,
			Reason: "multiple candidates: " + formatLinks(candidates),
		}
	}
	if len(candidates) == 1 && isPartial(candidates[0]) {
		candidate := candidates[0]
		return LinkDiff{
			Intent: intent,
			AsIs:   &candidate,
			Status: StatusPartialObserved,
			Reason: "partial LLDP observation: " + formatLink(candidate),
		}
	}

	if ports := devicePairPorts(intent, asis); len(ports) > 0 {
		return LinkDiff{
			Intent: intent,
			Status: StatusPortMismatch,
			Reason: "remote port differs: " + strings.Join(ports, ", "),
		}
	}
	if devices := portPairDevices(intent, asis); len(devices) > 0 {
		return LinkDiff{
			Intent: intent,
			Status: StatusDeviceMismatch,
			Reason: "remote device differs: " + strings.Join(devices, ", "),
		}
	}

	return LinkDiff{
		Intent: intent,
		Status: StatusMissingAsIs,
		Reason: "no lldp observation",
	}
}

// findCandidates associates an intent with As-Is links loosely: strict
// unordered device-pair or port-pair equality, or — when the link carries
// the unknown sentinel in any field — any overlap of one device name or one
// normalized port name.
func findCandidates(intent LinkIntent, asis []AsIsLink) []AsIsLink {
	wantDevices := unorderedPair(intent.DeviceA, intent.DeviceB)
	wantPorts := unorderedPair(intent.PortANorm, intent.PortBNorm)

	var candidates []AsIsLink
	for _, link := range asis {
		linkDevices := unorderedPair(link.DeviceA, link.DeviceB)
		linkPorts := unorderedPair(link.PortA, link.PortB)
		if linkDevices == wantDevices || linkPorts == wantPorts {
			candidates = append(candidates, link)
			continue
		}
		if !hasUnknownField(link) {
			continue
		}
		deviceOverlap := linkDevices.contains(intent.DeviceA) || linkDevices.contains(intent.DeviceB)
		portOverlap := linkPorts.contains(intent.PortANorm) || linkPorts.contains(intent.PortBNorm)
		if deviceOverlap || portOverlap {
			candidates = append(candidates, link)
		}
	}
	return candidates
}

func isPartial(link AsIsLink) bool {
	return link.Confidence == ConfidencePartial || hasUnknownField(link)
}

func hasUnknownField(link AsIsLink) bool {
	return link.DeviceA == Unknown || link.DeviceB == Unknown ||
		link.PortA == Unknown || link.PortB == Unknown
}

// devicePairPorts collects observed port pairs for links connecting exactly
// the intent's device pair.
func devicePairPorts(intent LinkIntent, asis []AsIsLink) []string {
	want := unorderedPair(intent.DeviceA, intent.DeviceB)
	var out []string
	for _, link := range asis {
		if unorderedPair(link.DeviceA, link.DeviceB) == want {
			out = append(out, fmt.Sprintf("%s-%s", link.PortA, link.PortB))
		}
	}
	return out
}

// portPairDevices collects observed device pairs for links connecting
// exactly the intent's normalized port pair.
func portPairDevices(intent LinkIntent, asis []AsIsLink) []string {
	want := unorderedPair(intent.PortANorm, intent.PortBNorm)
	var out []string
	for _, link := range asis {
		if unorderedPair(link.PortA, link.PortB) == want {
			out = append(out, fmt.Sprintf("%s-%s", link.DeviceA, link.DeviceB))
		}
	}
	return out
}

func formatLink(link AsIsLink) string {
	return fmt.Sprintf("%s:%s-%s:%s", link.DeviceA, link.PortA, link.DeviceB, link.PortB)
}

func formatLinks(links []AsIsLink) string {
	parts := make([]string, 0, len(links))
	for _, link := range links {
		parts = append(parts, formatLink(link))
	}
	return strings.Join(parts, ", ")
}

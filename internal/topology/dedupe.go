package topology

import "sort"

// linkKey is the canonical grouping key for an undirected link.
type linkKey struct {
	deviceA, portA string
	deviceB, portB string
}

// Deduplicate merges directional observations into undirected AsIsLinks,
// one per physical link. Two observations reporting the same link from
// opposite ends collapse to the same canonical key. Output is sorted by
// (DeviceA, PortA, DeviceB, PortB).
func Deduplicate(observations []LinkObservation) []AsIsLink {
	grouped := map[linkKey][]LinkObservation{}
	var order []linkKey
	for _, obs := range observations {
		remote := obs.RemoteDeviceName
		if remote == Unknown {
			remote = obs.RemoteDeviceID
		}
		da, pa, db, pb := canonicalize(obs.LocalDevice, obs.LocalPortNorm, remote, obs.RemotePortNorm)
		key := linkKey{da, pa, db, pb}
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], obs)
	}

	links := make([]AsIsLink, 0, len(order))
	for _, key := range order {
		group := grouped[key]
		links = append(links, AsIsLink{
			DeviceA:    key.deviceA,
			PortA:      key.portA,
			DeviceB:    key.deviceB,
			PortB:      key.portB,
			Confidence: mergeConfidence(group),
			Evidence:   distinctSources(group),
		})
	}

	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.DeviceA != b.DeviceA {
			return a.DeviceA < b.DeviceA
		}
		if a.PortA != b.PortA {
			return a.PortA < b.PortA
		}
		if a.DeviceB != b.DeviceB {
			return a.DeviceB < b.DeviceB
		}
		return a.PortB < b.PortB
	})
	return links
}

// canonicalize orders an unordered device/port pair deterministically:
// the lexicographically smaller (device, port) tuple becomes the A side.
// Empty fields are replaced with Unknown before comparison.
func canonicalize(deviceA, portA, deviceB, portB string) (string, string, string, string) {
	deviceA = orUnknown(deviceA)
	portA = orUnknown(portA)
	deviceB = orUnknown(deviceB)
	portB = orUnknown(portB)
	if deviceA < deviceB || (deviceA == deviceB && portA <= portB) {
		return deviceA, portA, deviceB, portB
	}
	return deviceB, portB, deviceA, portA
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// mergeConfidence folds per-observation confidence into one link-level
// value. A lone "observed" report is not trusted: bidirectional agreement
// is required for the observed rating.
func mergeConfidence(group []LinkObservation) Confidence {
	hasObserved := false
	hasPartial := false
	for _, obs := range group {
		switch obs.Confidence {
		case ConfidenceObserved:
			hasObserved = true
		case ConfidencePartial:
			hasPartial = true
		}
	}
	if hasObserved && len(group) > 1 {
		return ConfidenceObserved
	}
	if hasPartial {
		return ConfidencePartial
	}
	return ConfidenceUnknown
}

func distinctSources(group []LinkObservation) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, obs := range group {
		if _, ok := seen[obs.Source]; ok {
			continue
		}
		seen[obs.Source] = struct{}{}
		out = append(out, obs.Source)
	}
	sort.Strings(out)
	return out
}

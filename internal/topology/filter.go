package topology

import "regexp"

// LinkFilter narrows As-Is links and diffs to a subset of devices and/or
// statuses. The zero value passes everything through.
type LinkFilter struct {
	Devices     []string
	DeviceRegex *regexp.Regexp
	Statuses    []DiffStatus
}

// FilterLinks returns the links whose either endpoint matches the device
// filter. With no device criteria the input is returned unchanged.
func (f LinkFilter) FilterLinks(links []AsIsLink) []AsIsLink {
	if len(f.Devices) == 0 && f.DeviceRegex == nil {
		return links
	}
	var out []AsIsLink
	for _, link := range links {
		if f.matchDevice(link.DeviceA, link.DeviceB) {
			out = append(out, link)
		}
	}
	return out
}

// FilterDiffs returns the diffs passing both the status filter and the
// device filter.
func (f LinkFilter) FilterDiffs(diffs []LinkDiff) []LinkDiff {
	if len(f.Devices) == 0 && f.DeviceRegex == nil && len(f.Statuses) == 0 {
		return diffs
	}
	var out []LinkDiff
	for _, diff := range diffs {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, diff.Status) {
			continue
		}
		if (len(f.Devices) > 0 || f.DeviceRegex != nil) &&
			!f.matchDevice(diff.Intent.DeviceA, diff.Intent.DeviceB) {
			continue
		}
		out = append(out, diff)
	}
	return out
}

func (f LinkFilter) matchDevice(names ...string) bool {
	for _, name := range names {
		for _, want := range f.Devices {
			if name == want {
				return true
			}
		}
		if f.DeviceRegex != nil && f.DeviceRegex.MatchString(name) {
			return true
		}
	}
	return false
}

func containsStatus(statuses []DiffStatus, s DiffStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"wirecheck/internal/topology"
)

// Summary holds the run-level counters. Collection error codes are passed
// through from the collector untouched.
type Summary struct {
	FailedDevices []string                     `json:"lldpFailedDevices"`
	AsIsLinks     int                          `json:"asisLinks"`
	Intents       int                          `json:"intents"`
	MissingPorts  int                          `json:"missingPorts"`  // PARTIAL_OBSERVED count
	MismatchLinks int                          `json:"mismatchLinks"` // anything but EXACT_MATCH
	ByStatus      map[topology.DiffStatus]int  `json:"byStatus"`
}

// BuildSummary computes counters over one run's diffs and links.
func BuildSummary(diffs []topology.LinkDiff, links []topology.AsIsLink, failedDevices []string) Summary {
	s := Summary{
		FailedDevices: dedupSorted(failedDevices),
		AsIsLinks:     len(links),
		Intents:       len(diffs),
		ByStatus:      map[topology.DiffStatus]int{},
	}
	for _, diff := range diffs {
		s.ByStatus[diff.Status]++
		if diff.Status == topology.StatusPartialObserved {
			s.MissingPorts++
		}
		if diff.Status != topology.StatusExactMatch {
			s.MismatchLinks++
		}
	}
	return s
}

// WriteSummaryText writes the plain-text summary artifact.
func WriteSummaryText(path string, s Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "lldp_failed_devices: %s\n", strings.Join(s.FailedDevices, ", "))
	fmt.Fprintf(&b, "asis_links: %d\n", s.AsIsLinks)
	fmt.Fprintf(&b, "intents: %d\n", s.Intents)
	fmt.Fprintf(&b, "missing_ports: %d\n", s.MissingPorts)
	fmt.Fprintf(&b, "mismatch_links: %d\n", s.MismatchLinks)
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// WriteSummaryJSON writes the summary as pretty JSON.
func WriteSummaryJSON(path string, s Summary) error {
	return writeJSON(path, s)
}

func dedupSorted(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Package report serializes run results (As-Is links, diffs, summary,
// diagram) into the output directory.
package report

import (
	"encoding/csv"
	"os"
	"sort"
	"strings"

	"wirecheck/internal/topology"
)

// WriteAsIsLinksCSV writes the deduplicated link table. Rows are sorted by
// canonical key so output is stable regardless of input order.
func WriteAsIsLinksCSV(path string, links []topology.AsIsLink) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"local_device", "local_port", "remote_device", "remote_port", "confidence", "evidence"}); err != nil {
		return err
	}
	for _, link := range sortedLinks(links) {
		if err := w.Write([]string{
			link.DeviceA, link.PortA, link.DeviceB, link.PortB,
			string(link.Confidence), strings.Join(link.Evidence, ";"),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteDiffsCSV writes the reconciliation table, sorted by intent fields.
func WriteDiffsCSV(path string, diffs []topology.LinkDiff) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"device_a", "port_a", "device_b", "port_b", "status", "reason"}); err != nil {
		return err
	}
	for _, diff := range sortedDiffs(diffs) {
		in := diff.Intent
		if err := w.Write([]string{
			in.DeviceA, in.PortANorm, in.DeviceB, in.PortBNorm,
			string(diff.Status), diff.Reason,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func sortedLinks(links []topology.AsIsLink) []topology.AsIsLink {
	out := make([]topology.AsIsLink, len(links))
	copy(out, links)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
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
	return out
}

func sortedDiffs(diffs []topology.LinkDiff) []topology.LinkDiff {
	out := make([]topology.LinkDiff, len(diffs))
	copy(out, diffs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Intent, out[j].Intent
		if a.DeviceA != b.DeviceA {
			return a.DeviceA < b.DeviceA
		}
		if a.PortANorm != b.PortANorm {
			return a.PortANorm < b.PortANorm
		}
		if a.DeviceB != b.DeviceB {
			return a.DeviceB < b.DeviceB
		}
		return a.PortBNorm < b.PortBNorm
	})
	return out
}

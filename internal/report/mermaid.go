package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"wirecheck/internal/topology"
)

// DefaultMaxDiagramNodes bounds diagram size; beyond it devices are
// truncated alphabetically.
const DefaultMaxDiagramNodes = 50

// MermaidDiagram renders the As-Is topology as a mermaid "graph LR"
// definition. When diffs are given, devices touched by any non-exact diff
// are styled red, the rest green. The unknown sentinel never becomes a
// node.
func MermaidDiagram(links []topology.AsIsLink, diffs []topology.LinkDiff, maxNodes int) string {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxDiagramNodes
	}

	deviceSet := map[string]struct{}{}
	for _, link := range links {
		deviceSet[link.DeviceA] = struct{}{}
		deviceSet[link.DeviceB] = struct{}{}
	}
	delete(deviceSet, topology.Unknown)

	devices := make([]string, 0, len(deviceSet))
	for d := range deviceSet {
		devices = append(devices, d)
	}
	sort.Strings(devices)
	if len(devices) > maxNodes {
		devices = devices[:maxNodes]
	}
	included := map[string]struct{}{}
	for _, d := range devices {
		included[d] = struct{}{}
	}

	lines := []string{"graph LR"}
	for _, link := range sortedLinks(links) {
		if _, ok := included[link.DeviceA]; !ok {
			continue
		}
		if _, ok := included[link.DeviceB]; !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("    %s[%q] -->|%s -- %s| %s[%q]",
			nodeID(link.DeviceA), link.DeviceA, link.PortA, link.PortB,
			nodeID(link.DeviceB), link.DeviceB))
	}

	if len(diffs) > 0 {
		lines = append(lines, "", "    %% Styling")
		for _, device := range devices {
			if deviceHasMismatch(device, diffs) {
				lines = append(lines, fmt.Sprintf("    style %s fill:#ffcccc", nodeID(device)))
			} else {
				lines = append(lines, fmt.Sprintf("    style %s fill:#ccffcc", nodeID(device)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// WriteMermaidDiagram writes the diagram artifact with a trailing newline.
func WriteMermaidDiagram(path string, links []topology.AsIsLink, diffs []topology.LinkDiff, maxNodes int) error {
	return os.WriteFile(path, []byte(MermaidDiagram(links, diffs, maxNodes)+"\n"), 0o600)
}

func deviceHasMismatch(device string, diffs []topology.LinkDiff) bool {
	for _, diff := range diffs {
		if diff.Status == topology.StatusExactMatch {
			continue
		}
		if diff.Intent.DeviceA == device || diff.Intent.DeviceB == device {
			return true
		}
	}
	return false
}

func nodeID(device string) string {
	r := strings.NewReplacer("-", "_", ".", "_", "/", "_")
	return r.Replace(device)
}

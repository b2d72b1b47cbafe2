package report

import (
	"encoding/json"
	"os"

	"wirecheck/internal/topology"
)

// WriteAsIsLinksJSON mirrors the CSV link table as pretty JSON.
func WriteAsIsLinksJSON(path string, links []topology.AsIsLink) error {
	return writeJSON(path, sortedLinks(links))
}

// WriteDiffsJSON mirrors the CSV diff table as pretty JSON.
func WriteDiffsJSON(path string, diffs []topology.LinkDiff) error {
	return writeJSON(path, sortedDiffs(diffs))
}

// ReadAsIsLinksJSON reads back a link artifact; round-trips exactly.
func ReadAsIsLinksJSON(path string) ([]topology.AsIsLink, error) {
	var links []topology.AsIsLink
	if err := readJSON(path, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// ReadDiffsJSON reads back a diff artifact; round-trips exactly.
func ReadDiffsJSON(path string) ([]topology.LinkDiff, error) {
	var diffs []topology.LinkDiff
	if err := readJSON(path, &diffs); err != nil {
		return nil, err
	}
	return diffs, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o600)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

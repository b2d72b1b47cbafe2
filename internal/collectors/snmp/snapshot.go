package snmp

// Observation snapshots let a run be replayed without touching the network
// (--save-observations / --load-observations).

import (
	"encoding/json"
	"os"

	"wirecheck/internal/topology"
)

// SaveObservations writes the collected observations as pretty JSON.
func SaveObservations(path string, observations []topology.LinkObservation) error {
	b, err := json.MarshalIndent(observations, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o600)
}

// LoadObservations reads a snapshot written by SaveObservations.
func LoadObservations(path string) ([]topology.LinkObservation, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var observations []topology.LinkObservation
	if err := json.Unmarshal(b, &observations); err != nil {
		return nil, err
	}
	return observations, nil
}

// Package pipeline runs the collect, dedupe, diff stages for one audit run.
package pipeline

import (
	"context"
	"log/slog"

	"wirecheck/internal/collectors/snmp"
	"wirecheck/internal/topology"
)

// Result carries everything one run produced.
type Result struct {
	Observations  []topology.LinkObservation
	Links         []topology.AsIsLink
	Diffs         []topology.LinkDiff
	FailedDevices []string
	DeviceErrors  map[string][]string
}

// Pipeline wires a collector to the topology stages.
type Pipeline struct {
	Collector snmp.Collector
	Log       *slog.Logger
}

// New builds a pipeline around the given collector.
func New(collector snmp.Collector, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{Collector: collector, Log: log}
}

// Run collects LLDP observations from every device, deduplicates them into
// undirected links and diffs the result against the intended wiring. Device
// level collection failures are reported in the result, not as an error.
func (p *Pipeline) Run(ctx context.Context, devices []topology.Device, intents []topology.LinkIntent, aliases map[string]string) (Result, error) {
	collected, err := p.Collector.Collect(ctx, devices, aliases)
	if err != nil {
		return Result{}, err
	}
	for device, codes := range collected.DeviceErrors {
		for _, code := range codes {
			p.Log.Warn("collection error", "device", device, "code", code)
		}
	}
	return p.Reconcile(collected.Observations, intents, collected), nil
}

// Reconcile runs the offline stages over an already collected observation
// set. Used both by Run and by replays from a saved snapshot.
func (p *Pipeline) Reconcile(observations []topology.LinkObservation, intents []topology.LinkIntent, collected snmp.Result) Result {
	links := topology.Deduplicate(observations)
	diffs := topology.Diff(intents, links)

	p.Log.Info("reconciled",
		"observations", len(observations),
		"asis_links", len(links),
		"intents", len(intents),
		"failed_devices", len(collected.DeviceErrors))

	return Result{
		Observations:  observations,
		Links:         links,
		Diffs:         diffs,
		FailedDevices: collected.FailedDevices(),
		DeviceErrors:  collected.DeviceErrors,
	}
}

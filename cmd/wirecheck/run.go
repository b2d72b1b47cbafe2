package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wirecheck/internal/collectors/snmp"
	"wirecheck/internal/config"
	"wirecheck/internal/inventory"
	"wirecheck/internal/logging"
	"wirecheck/internal/pipeline"
	"wirecheck/internal/report"
	"wirecheck/internal/storage/workdir"
	"wirecheck/internal/topology"
)

type runOptions struct {
	configPath string
	devices    string
	tobe       string
	outDir     string

	snmpTimeout time.Duration
	snmpRetries int
	snmpVerbose bool

	logLevel     string
	outputFormat string

	dryRun           bool
	loadObservations string
	saveObservations string
	mermaid          bool

	filterDevices     []string
	filterDeviceRegex string
	filterStatus      []string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect LLDP neighbors and diff them against the To-Be wiring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "path to YAML config file")
	f.StringVar(&opts.devices, "devices", "", "device inventory CSV (required)")
	f.StringVar(&opts.tobe, "tobe", "", "To-Be wiring CSV (required)")
	f.StringVar(&opts.outDir, "out-dir", "", "output directory for report artifacts")
	f.DurationVar(&opts.snmpTimeout, "snmp-timeout", 0, "per-request SNMP timeout")
	f.IntVar(&opts.snmpRetries, "snmp-retries", -1, "SNMP retry count")
	f.BoolVar(&opts.snmpVerbose, "snmp-verbose", false, "log per-device collection detail")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.outputFormat, "output-format", "", "report format: csv, json or both")
	f.BoolVar(&opts.dryRun, "dry-run", false, "use the built-in static collector instead of SNMP")
	f.StringVar(&opts.loadObservations, "load-observations", "", "replay observations from a JSON snapshot instead of collecting")
	f.StringVar(&opts.saveObservations, "save-observations", "", "save collected observations to a JSON snapshot")
	f.BoolVar(&opts.mermaid, "mermaid", false, "also write a mermaid topology diagram")
	f.StringSliceVar(&opts.filterDevices, "filter-devices", nil, "only report links/diffs touching these devices")
	f.StringVar(&opts.filterDeviceRegex, "filter-devices-regex", "", "only report links/diffs whose device names match")
	f.StringSliceVar(&opts.filterStatus, "filter-status", nil, "only report diffs with these statuses")
	_ = cmd.MarkFlagRequired("devices")
	_ = cmd.MarkFlagRequired("tobe")

	return cmd
}

func runAudit(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return &exitError{code: exitInvalidInput, err: err}
	}
	applyFlagOverrides(cmd, opts, &cfg)

	if cfg.Output.Dir == "" {
		return &exitError{code: exitInvalidInput, err: fmt.Errorf("output directory required: set --out-dir or output.dir in the config file")}
	}

	log := logging.Setup(cfg.Log.Level)

	filter, err := buildFilter(opts)
	if err != nil {
		return &exitError{code: exitInvalidInput, err: err}
	}

	devices, err := inventory.LoadDevices(opts.devices)
	if err != nil {
		return &exitError{code: exitInvalidInput, err: err}
	}
	intents, err := inventory.LoadIntents(opts.tobe)
	if err != nil {
		return &exitError{code: exitInvalidInput, err: err}
	}
	aliases := inventory.BuildAliasMap(devices)
	log.Info("inventory loaded", "devices", len(devices), "intents", len(intents))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(buildCollector(cfg, opts, log), log)

	var res pipeline.Result
	if opts.loadObservations != "" {
		observations, err := snmp.LoadObservations(opts.loadObservations)
		if err != nil {
			return &exitError{code: exitInvalidInput, err: err}
		}
		log.Info("observations loaded from snapshot", "path", opts.loadObservations, "count", len(observations))
		res = p.Reconcile(observations, intents, snmp.Result{})
	} else {
		res, err = p.Run(ctx, devices, intents, aliases)
		if err != nil {
			return &exitError{code: exitInvalidInput, err: err}
		}
	}

	if opts.saveObservations != "" {
		if err := snmp.SaveObservations(opts.saveObservations, res.Observations); err != nil {
			return fmt.Errorf("save observations: %w", err)
		}
	}

	if err := writeReports(cfg, opts, filter, res, log); err != nil {
		return err
	}

	if len(res.FailedDevices) > 0 {
		return &exitError{code: exitCollectionError}
	}
	return nil
}

// applyFlagOverrides lets explicitly set flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command, opts *runOptions, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("snmp-timeout") {
		cfg.SNMP.Timeout = opts.snmpTimeout
	}
	if f.Changed("snmp-retries") {
		cfg.SNMP.Retries = opts.snmpRetries
	}
	if f.Changed("snmp-verbose") {
		cfg.SNMP.Verbose = opts.snmpVerbose
	}
	if f.Changed("out-dir") {
		cfg.Output.Dir = opts.outDir
	}
	if f.Changed("output-format") {
		cfg.Output.Format = opts.outputFormat
	}
	if f.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
}

func buildCollector(cfg config.Config, opts *runOptions, log *slog.Logger) snmp.Collector {
	if opts.dryRun {
		return snmp.NewNoOp()
	}
	c := snmp.NewLLDP()
	c.Timeout = cfg.SNMP.Timeout
	c.Retries = cfg.SNMP.Retries
	c.Port = cfg.SNMP.Port
	c.Verbose = cfg.SNMP.Verbose
	c.Log = log
	return c
}

func buildFilter(opts *runOptions) (topology.LinkFilter, error) {
	filter := topology.LinkFilter{Devices: opts.filterDevices}
	if opts.filterDeviceRegex != "" {
		re, err := regexp.Compile(opts.filterDeviceRegex)
		if err != nil {
			return topology.LinkFilter{}, fmt.Errorf("invalid device regex: %w", err)
		}
		filter.DeviceRegex = re
	}
	for _, raw := range opts.filterStatus {
		status, err := parseStatus(raw)
		if err != nil {
			return topology.LinkFilter{}, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

func parseStatus(raw string) (topology.DiffStatus, error) {
	for _, s := range []topology.DiffStatus{
		topology.StatusExactMatch,
		topology.StatusPortMismatch,
		topology.StatusDeviceMismatch,
		topology.StatusMissingAsIs,
		topology.StatusPartialObserved,
		topology.StatusUnknown,
	} {
		if raw == string(s) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown diff status %q", raw)
}

func writeReports(cfg config.Config, opts *runOptions, filter topology.LinkFilter, res pipeline.Result, log *slog.Logger) error {
	wd := workdir.NewManager(cfg.Output.Dir)
	if err := wd.EnsureStructure(); err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	links := filter.FilterLinks(res.Links)
	diffs := filter.FilterDiffs(res.Diffs)
	summary := report.BuildSummary(diffs, links, res.FailedDevices)

	writeCSV := cfg.Output.Format == "csv" || cfg.Output.Format == "both"
	writeJSON := cfg.Output.Format == "json" || cfg.Output.Format == "both"

	if writeCSV {
		if err := report.WriteAsIsLinksCSV(wd.ArtifactPath("asis_links.csv"), links); err != nil {
			return err
		}
		if err := report.WriteDiffsCSV(wd.ArtifactPath("diff_links.csv"), diffs); err != nil {
			return err
		}
		if err := report.WriteSummaryText(wd.ArtifactPath("summary.txt"), summary); err != nil {
			return err
		}
	}
	if writeJSON {
		if err := report.WriteAsIsLinksJSON(wd.ArtifactPath("asis_links.json"), links); err != nil {
			return err
		}
		if err := report.WriteDiffsJSON(wd.ArtifactPath("diff_links.json"), diffs); err != nil {
			return err
		}
		if err := report.WriteSummaryJSON(wd.ArtifactPath("summary.json"), summary); err != nil {
			return err
		}
	}
	if opts.mermaid {
		if err := report.WriteMermaidDiagram(wd.ArtifactPath("topology.mmd"), links, diffs, 0); err != nil {
			return err
		}
	}

	sess, err := wd.NewRunSession(time.Now())
	if err != nil {
		return err
	}
	if err := wd.SaveJSON(sess, "observations.json", res.Observations); err != nil {
		return err
	}
	if err := wd.SaveJSON(sess, "summary.json", summary); err != nil {
		return err
	}

	log.Info("run complete",
		"out_dir", cfg.Output.Dir,
		"asis_links", summary.AsIsLinks,
		"intents", summary.Intents,
		"mismatch_links", summary.MismatchLinks,
		"failed_devices", len(summary.FailedDevices))
	return nil
}

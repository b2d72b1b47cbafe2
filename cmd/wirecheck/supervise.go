package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wirecheck/internal/logging"
	"wirecheck/internal/supervisor"
)

type superviseOptions struct {
	controlHost      string
	controlPort      int
	controlToken     string
	terminateTimeout time.Duration
	shutdownOnExit   bool
	logLevel         string
}

func newSuperviseCmd() *cobra.Command {
	opts := &superviseOptions{}

	cmd := &cobra.Command{
		Use:   "supervise [flags] -- [run flags]",
		Short: "Run an audit as a supervised child with an HTTP control API",
		Long: `Starts "wirecheck run" as a child process in its own process group and
serves a small HTTP API to pause, resume or terminate it. Everything after
"--" is passed to the run command unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSupervise(opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.controlHost, "control-host", "127.0.0.1", "control API bind address")
	f.IntVar(&opts.controlPort, "control-port", 8791, "control API port, 0 picks a free one")
	f.StringVar(&opts.controlToken, "control-token", "", "token required on control requests, empty disables auth")
	f.DurationVar(&opts.terminateTimeout, "terminate-timeout", supervisor.DefaultTerminateTimeout, "grace period between SIGTERM and SIGKILL")
	f.BoolVar(&opts.shutdownOnExit, "shutdown-on-exit", false, "stop the control server when the child exits")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runSupervise(opts *superviseOptions, runArgs []string) error {
	log := logging.Setup(opts.logLevel)

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve own executable: %w", err)
	}

	sup := supervisor.New(log)
	sup.TerminateTimeout = opts.terminateTimeout
	if err := sup.Start(self, append([]string{"run"}, runArgs...)...); err != nil {
		return err
	}

	srv := supervisor.NewServer(sup, opts.controlToken, log)
	srv.OnShutdown = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}

	addr := fmt.Sprintf("%s:%d", opts.controlHost, opts.controlPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind control address %s: %w", addr, err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	childDone := make(chan int, 1)
	go func() { childDone <- sup.Wait() }()

	var code int
	select {
	case code = <-childDone:
		log.Info("child finished", "exit_code", code)
		if opts.shutdownOnExit {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = srv.Shutdown(ctx)
			cancel()
			<-serveErr
		} else {
			log.Info("control server stays up, POST /api/shutdown to stop")
			if err := <-serveErr; err != nil {
				return err
			}
		}
	case err := <-serveErr:
		// control server died first; bring the child down too
		_ = sup.Terminate()
		code = sup.Wait()
		if err != nil {
			return err
		}
	}

	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// Package supervisor runs an audit child process in its own process group
// and exposes pause, resume and terminate controls over it.
package supervisor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Child lifecycle states as reported over the control API.
const (
	StateRunning    = "running"
	StatePaused     = "paused"
	StateExited     = "exited"
	StateTerminated = "terminated"
)

var (
	ErrNotRunning     = errors.New("child process is not running")
	ErrAlreadyPaused  = errors.New("child process is already paused")
	ErrNotPaused      = errors.New("child process is not paused")
	ErrAlreadyStopped = errors.New("child process already stopped")
)

// DefaultTerminateTimeout bounds the SIGTERM grace period before SIGKILL.
const DefaultTerminateTimeout = 10 * time.Second

// Status is a point-in-time snapshot of the supervised child.
type Status struct {
	PID      int    `json:"pid"`
	State    string `json:"state"`
	ExitCode *int   `json:"exitCode,omitempty"`
	Started  string `json:"started"`
}

// Supervisor owns one child process. Signals are delivered to the child's
// process group so pipelines spawned by the child pause and stop with it.
type Supervisor struct {
	TerminateTimeout time.Duration
	Log              *slog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	state    string
	exitCode *int
	started  time.Time
	done     chan struct{}
}

// New prepares a supervisor; Start launches the child.
func New(log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{
		TerminateTimeout: DefaultTerminateTimeout,
		Log:              log,
	}
}

// Start launches the command in a fresh process group and begins reaping it
// in the background.
func (s *Supervisor) Start(name string, args ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil && s.state != StateExited && s.state != StateTerminated {
		return fmt.Errorf("child already running with pid %d", s.cmd.Process.Pid)
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start child: %w", err)
	}

	s.cmd = cmd
	s.state = StateRunning
	s.exitCode = nil
	s.started = time.Now()
	s.done = make(chan struct{})
	s.Log.Info("child started", "pid", cmd.Process.Pid, "command", name)

	go s.reap(cmd, s.done)
	return nil
}

func (s *Supervisor) reap(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	s.mu.Lock()
	if s.state != StateTerminated {
		s.state = StateExited
	}
	s.exitCode = &code
	s.mu.Unlock()
	s.Log.Info("child exited", "pid", cmd.Process.Pid, "exit_code", code)
	close(done)
}

// Pause sends SIGSTOP to the child's process group.
func (s *Supervisor) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePaused:
		return ErrAlreadyPaused
	case StateRunning:
	default:
		return ErrNotRunning
	}
	if err := s.signalGroup(syscall.SIGSTOP); err != nil {
		return err
	}
	s.state = StatePaused
	s.Log.Info("child paused", "pid", s.cmd.Process.Pid)
	return nil
}

// Resume sends SIGCONT to the child's process group.
func (s *Supervisor) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return ErrNotPaused
	}
	if err := s.signalGroup(syscall.SIGCONT); err != nil {
		return err
	}
	s.state = StateRunning
	s.Log.Info("child resumed", "pid", s.cmd.Process.Pid)
	return nil
}

// Terminate asks the child to exit with SIGTERM and escalates to SIGKILL
// when the grace period runs out. A paused child is resumed first so the
// SIGTERM can be delivered.
func (s *Supervisor) Terminate() error {
	s.mu.Lock()
	if s.state == StateExited || s.state == StateTerminated {
		s.mu.Unlock()
		return ErrAlreadyStopped
	}
	if s.cmd == nil {
		s.mu.Unlock()
		return ErrNotRunning
	}
	if s.state == StatePaused {
		_ = s.signalGroup(syscall.SIGCONT)
	}
	pid := s.cmd.Process.Pid
	done := s.done
	timeout := s.TerminateTimeout
	if err := s.signalGroup(syscall.SIGTERM); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateTerminated
	s.mu.Unlock()

	s.Log.Info("child terminating", "pid", pid, "grace", timeout)
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
	}

	s.Log.Warn("grace period expired, killing process group", "pid", pid)
	s.mu.Lock()
	err := s.signalGroup(syscall.SIGKILL)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	<-done
	return nil
}

// Wait blocks until the child exits and returns its exit code.
func (s *Supervisor) Wait() int {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return -1
	}
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exitCode == nil {
		return -1
	}
	return *s.exitCode
}

// Status reports the current child state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{State: s.state}
	if s.cmd != nil && s.cmd.Process != nil {
		st.PID = s.cmd.Process.Pid
	}
	if !s.started.IsZero() {
		st.Started = s.started.Format(time.RFC3339)
	}
	if s.exitCode != nil {
		code := *s.exitCode
		st.ExitCode = &code
	}
	return st
}

// signalGroup signals the whole process group. Callers hold the mutex.
func (s *Supervisor) signalGroup(sig syscall.Signal) error {
	if s.cmd == nil || s.cmd.Process == nil {
		return ErrNotRunning
	}
	if err := syscall.Kill(-s.cmd.Process.Pid, sig); err != nil {
		return fmt.Errorf("signal %v to pgid %d: %w", sig, s.cmd.Process.Pid, err)
	}
	return nil
}

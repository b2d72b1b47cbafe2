package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPauseResumeTerminate(t *testing.T) {
	sup := New(nil)
	sup.TerminateTimeout = 2 * time.Second

	require.NoError(t, sup.Start("sleep", "30"))

	st := sup.Status()
	assert.Equal(t, StateRunning, st.State)
	assert.NotZero(t, st.PID)

	require.NoError(t, sup.Pause())
	assert.Equal(t, StatePaused, sup.Status().State)
	assert.ErrorIs(t, sup.Pause(), ErrAlreadyPaused)

	require.NoError(t, sup.Resume())
	assert.Equal(t, StateRunning, sup.Status().State)
	assert.ErrorIs(t, sup.Resume(), ErrNotPaused)

	require.NoError(t, sup.Terminate())
	assert.Equal(t, StateTerminated, sup.Status().State)
	assert.ErrorIs(t, sup.Terminate(), ErrAlreadyStopped)
}

func TestTerminateWhilePaused(t *testing.T) {
	sup := New(nil)
	sup.TerminateTimeout = 2 * time.Second

	require.NoError(t, sup.Start("sleep", "30"))
	require.NoError(t, sup.Pause())

	require.NoError(t, sup.Terminate())
	assert.Equal(t, StateTerminated, sup.Status().State)
}

func TestWaitReturnsExitCode(t *testing.T) {
	sup := New(nil)

	require.NoError(t, sup.Start("sh", "-c", "exit 3"))
	assert.Equal(t, 3, sup.Wait())
	assert.Equal(t, StateExited, sup.Status().State)

	st := sup.Status()
	require.NotNil(t, st.ExitCode)
	assert.Equal(t, 3, *st.ExitCode)
}

func TestPauseWithoutChild(t *testing.T) {
	sup := New(nil)
	assert.ErrorIs(t, sup.Pause(), ErrNotRunning)
	assert.ErrorIs(t, sup.Resume(), ErrNotPaused)
	assert.ErrorIs(t, sup.Terminate(), ErrNotRunning)
}

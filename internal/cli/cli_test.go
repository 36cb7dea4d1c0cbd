package cli_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/composable_ive_go/config"
	"github.com/on-the-ground/composable_ive_go/features/counter"
	"github.com/on-the-ground/composable_ive_go/features/sharedstate"
	"github.com/on-the-ground/composable_ive_go/internal/cli"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--set", "log.level=error"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCounter_PrintsFinalState(t *testing.T) {
	out, _, err := execute(t, "counter", "+", "increment", "-", "+")
	require.NoError(t, err)

	var state counter.State
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, 2, state.Count)
}

func TestCounter_UnknownAction(t *testing.T) {
	_, _, err := execute(t, "counter", "+", "jump")
	assert.ErrorIs(t, err, counter.ErrUnknownAction)
}

func TestCounter_VerbosePrintsChanges(t *testing.T) {
	_, changes, err := execute(t, "counter", "--verbose", "+")
	require.NoError(t, err)
	assert.Contains(t, changes, "received action: (counter.IncrementButtonTapped)")
	assert.Contains(t, changes, "+  Count: (int) 1")
}

func TestRoot_RejectsBadOverrides(t *testing.T) {
	_, _, err := execute(t, "--set", "nonsense", "counter", "+")
	assert.ErrorIs(t, err, cli.ErrInvalidOverride)

	_, _, err = execute(t, "--set", "shared.nope=1", "counter", "+")
	assert.ErrorIs(t, err, config.ErrUnknownKey)
}

func TestShared_PersistsAcrossRuns(t *testing.T) {
	for _, tc := range []struct {
		backend string
		set     string
	}{
		{"file", "shared.file.dir=" + t.TempDir()},
		{"sqlite", "shared.sqlite.path=" + filepath.Join(t.TempDir(), "nested", "stats.db")},
	} {
		t.Run(tc.backend, func(t *testing.T) {
			run := func(command string) sharedstate.Stats {
				out, _, err := execute(t, "shared", command, "--backend", tc.backend, "--set", tc.set)
				require.NoError(t, err)
				var stats sharedstate.Stats
				require.NoError(t, json.Unmarshal([]byte(out), &stats))
				return stats
			}

			run("increment")
			run("increment")
			run("decrement")
			assert.Equal(t, sharedstate.Stats{Count: 1, MaxCount: 2, NumberOfCounts: 3}, run("show"))
			assert.Equal(t, sharedstate.Stats{}, run("reset"))
		})
	}
}

func TestShared_MemoryForgetsBetweenRuns(t *testing.T) {
	_, _, err := execute(t, "shared", "increment")
	require.NoError(t, err)

	out, _, err := execute(t, "shared", "show")
	require.NoError(t, err)
	var stats sharedstate.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, sharedstate.Stats{}, stats)
}

func TestShared_Errors(t *testing.T) {
	_, _, err := execute(t, "shared", "show", "--backend", "tape")
	assert.ErrorIs(t, err, cli.ErrUnknownBackend)

	_, _, err = execute(t, "shared", "explode")
	assert.ErrorIs(t, err, cli.ErrUnknownCommand)
}

func TestExpect_ChecksPrintedState(t *testing.T) {
	_, _, err := execute(t, "counter", "+", "+", "--expect", "count == 2 && !isTimerRunning")
	require.NoError(t, err)

	_, _, err = execute(t, "counter", "+", "--expect", "count == 3")
	assert.ErrorIs(t, err, cli.ErrExpectationFailed)

	_, _, err = execute(t, "shared", "increment", "--expect", "maxCount == 1 && numberOfCounts == 1")
	require.NoError(t, err)

	_, _, err = execute(t, "counter", "+", "--expect", "count +")
	assert.ErrorContains(t, err, "invalid expectation")
}

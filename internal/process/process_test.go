package process

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAndWaitCleanExit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p, err := Spawn(context.Background(), "sh", []string{"-c", "echo hello"}, t.TempDir(), &stdout, &stderr)
	require.NoError(t, err)

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "hello")
}

func TestWaitReturnsNonZeroExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p, err := Spawn(context.Background(), "sh", []string{"-c", "exit 3"}, t.TempDir(), &stdout, &stderr)
	require.NoError(t, err)

	code, err := p.Wait()
	require.Error(t, err)
	assert.Equal(t, 3, code)
}

func TestTerminateStopsLongRunningProcess(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p, err := Spawn(context.Background(), "sh", []string{"-c", "sleep 30"}, t.TempDir(), &stdout, &stderr)
	require.NoError(t, err)

	start := time.Now()
	err = p.Terminate(2 * time.Second)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestDoneChannelSignalsExit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p, err := Spawn(context.Background(), "sh", []string{"-c", "true"}, t.TempDir(), &stdout, &stderr)
	require.NoError(t, err)

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected Done() to signal within 2s")
	}
}

func TestPidIsNonZeroAfterSpawn(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p, err := Spawn(context.Background(), "sh", []string{"-c", "true"}, t.TempDir(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Greater(t, p.Pid(), 0)
	_, _ = p.Wait()
}

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpCommandFlags(t *testing.T) {
	cmd := newUpCmd()

	assert.NotNil(t, cmd)
	assert.Equal(t, "up", cmd.Use)

	for _, name := range []string{"port", "build", "watch", "clear", "log-dir", "path"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s should exist", name)
	}

	portFlag := cmd.Flags().Lookup("port")
	assert.Equal(t, "3000", portFlag.DefValue)
}

func TestUpCommandHelp(t *testing.T) {
	cmd := newUpCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Usage:")
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rchart", cmd.Use)
	assert.Contains(t, cmd.Long, "RCHART_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"},
		{"seed", "test"}, {"seed", "user"}, {"seed", "detail"}, {"seed", "lists"}, {"seed", "all"},
		{"patient", "list"}, {"patient", "show"},
		{"provider", "show"},
		{"lists", "ls"}, {"lists", "show"},
		{"search"}, {"reindex"},
		{"backup", "create"}, {"backup", "list"},
		{"doctor"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"log-format", "config", "db"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	searchCmd, _, err := cmd.Find([]string{"search"})
	require.NoError(t, err)

	for _, name := range []string{"patient", "limit", "quick"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), name)
	}
}

func TestSeedDetailForceFlag(t *testing.T) {
	cmd := NewRootCommand()
	detailCmd, _, err := cmd.Find([]string{"seed", "detail"})
	require.NoError(t, err)

	force := detailCmd.Flags().Lookup("force")
	require.NotNil(t, force)
	assert.Equal(t, "false", force.DefValue)
}

func TestFormatValidationIntegration(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"output_format", []string{"--format", "xml", "init"}, "invalid format"},
		{"log_format", []string{"--log-format", "logfmt", "init"}, "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "quadra", cmd.Use)
	assert.Contains(t, cmd.Long, "Simpson 1/3")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"integrate", "eval", "validate", "rules", "run", "test", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
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

	workersFlag := cmd.PersistentFlags().Lookup("workers")
	require.NotNil(t, workersFlag)
	assert.Equal(t, "1", workersFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestIntegrateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	integrateCmd, _, err := cmd.Find([]string{"integrate"})
	require.NoError(t, err)

	ruleFlag := integrateCmd.Flags().Lookup("rule")
	require.NotNil(t, ruleFlag)
	assert.Equal(t, "r", ruleFlag.Shorthand)
	assert.Equal(t, "simpson13", ruleFlag.DefValue)

	for _, name := range []string{"a", "b", "n", "reference", "db", "strict"} {
		assert.NotNil(t, integrateCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	dbFlag := historyCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, NewRootCommand(), "rules", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("QUADRA_FORMAT", "json")

	out, _, err := execute(t, NewRootCommand(), "rules")
	require.NoError(t, err)

	resp := decode[[]RuleInfo](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data, 5)
}

func TestFlagBeatsEnvironment(t *testing.T) {
	t.Setenv("QUADRA_FORMAT", "json")

	out, _, err := execute(t, NewRootCommand(), "rules", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Simpson 3/8")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\nworkers: 4\n"), 0644))

	out, _, err := execute(t, NewRootCommand(), "--config", path, "eval", "x^2", "3")
	require.NoError(t, err)

	resp := decode[EvalResult](t, out)
	require.Len(t, resp.Data.Points, 1)
	assert.Equal(t, Float(9), resp.Data.Points[0].Y)
}

func TestEnvironmentBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0644))
	t.Setenv("QUADRA_FORMAT", "text")

	out, _, err := execute(t, NewRootCommand(), "--config", path, "eval", "x^2", "3")
	require.NoError(t, err)
	assert.Equal(t, "f(3) = 9\n", out)
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, NewRootCommand(), "--config", "/nonexistent/quadra.yaml", "rules")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestDatabaseFromEnvironment(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	t.Setenv("QUADRA_DB", db)

	out, _, err := execute(t, NewRootCommand(), "integrate", "x^2", "--b", "2", "--n", "4", "--format", "json")
	require.NoError(t, err)
	resp := decode[IntegrateResult](t, out)
	assert.NotEmpty(t, resp.RunID)

	out, _, err = execute(t, NewRootCommand(), "history", "--format", "json")
	require.NoError(t, err)
	entries := decode[[]HistoryEntry](t, out).Data
	require.Len(t, entries, 1)
	assert.Equal(t, resp.RunID, entries[0].ID)
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/delegate"
	"github.com/danieljhkim/hdlplan/internal/planner"
)

type manifestLibrary struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
}

type manifestOption struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type manifestRunner struct {
	Command []string `yaml:"command,omitempty"`
	Format  string   `yaml:"format,omitempty"`
}

type testManifest struct {
	Simulator      string            `yaml:"simulator,omitempty"`
	Builtins       []string          `yaml:"builtins,omitempty"`
	Libraries      []manifestLibrary `yaml:"libraries"`
	CompileOptions []manifestOption  `yaml:"compile_options,omitempty"`
	SimOptions     []manifestOption  `yaml:"sim_options,omitempty"`
	Runner         manifestRunner    `yaml:"runner,omitempty"`
}

// setupProject creates a source tree and manifest in a temp directory and
// points HDLPLAN_HOME at a fresh directory. It returns the manifest path.
func setupProject(t *testing.T, mutate func(m *testManifest)) string {
	t.Helper()
	t.Setenv("HDLPLAN_HOME", t.TempDir())

	root := t.TempDir()
	for _, p := range []string{
		"tb/i2c/tb_i2c.vhd",
		"src/utils/fifo.vhd",
		"src/utils/sync.vhd",
		"src/i2c/i2c_master.vhd",
	} {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("-- "+p+"\n"), 0644))
	}

	m := testManifest{
		Simulator: "ghdl",
		Builtins:  []string{"vhdl"},
		Libraries: []manifestLibrary{
			{Name: "i2c_tb", Sources: []string{"tb/i2c/**/*.vhd"}},
			{Name: "utils", Sources: []string{"src/utils/**/*.vhd"}},
			{Name: "i2c", Sources: []string{"src/i2c/*.vhd"}},
		},
		CompileOptions: []manifestOption{{Name: "ghdl.a_flags", Values: []string{"-frelaxed"}}},
		SimOptions:     []manifestOption{{Name: "nvc.heap_size", Values: []string{"256m"}}},
	}
	if mutate != nil {
		mutate(&m)
	}

	data, err := yaml.Marshal(m)
	require.NoError(t, err)
	manifest := filepath.Join(root, "hdlplan.yaml")
	require.NoError(t, os.WriteFile(manifest, data, 0644))
	return manifest
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestPlanCommand_Text(t *testing.T) {
	manifest := setupProject(t, nil)

	out, _, err := executeCommand(t, "--config", manifest, "plan")
	require.NoError(t, err)

	assert.Contains(t, out, "Build plan")
	assert.Contains(t, out, "1. i2c_tb")
	assert.Contains(t, out, "2. utils")
	assert.Contains(t, out, "3. i2c")
	assert.Contains(t, out, filepath.FromSlash("src/utils/fifo.vhd"))
	assert.Contains(t, out, "ghdl.a_flags")
	assert.Contains(t, out, "vhdl")
}

func TestPlanCommand_JSON(t *testing.T) {
	manifest := setupProject(t, nil)

	out, _, err := executeCommand(t, "--config", manifest, "--json", "plan")
	require.NoError(t, err)

	var got planOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Fingerprint)
	require.Len(t, got.Plan.Libraries, 3)
	assert.Equal(t, "i2c_tb", got.Plan.Libraries[0].Name)
	assert.Equal(t, "utils", got.Plan.Libraries[1].Name)
	assert.Len(t, got.Plan.Libraries[1].Files, 2)
	assert.Equal(t, []string{"vhdl"}, got.Plan.Builtins)
}

func TestPlanCommand_FormatToStdout(t *testing.T) {
	manifest := setupProject(t, nil)

	out, _, err := executeCommand(t, "--config", manifest, "plan", "--format", "toml")
	require.NoError(t, err)

	m, err := planner.DecodeManifest(bytes.NewBufferString(out), planner.FormatTOML)
	require.NoError(t, err)
	assert.Len(t, m.Libraries, 3)
}

func TestPlanCommand_Out(t *testing.T) {
	manifest := setupProject(t, nil)
	target := filepath.Join(t.TempDir(), "build", "plan.yaml")

	out, _, err := executeCommand(t, "--config", manifest, "plan", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote yaml plan")

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()

	m, err := planner.DecodeManifest(f, planner.FormatYAML)
	require.NoError(t, err)
	require.Len(t, m.Libraries, 3)
	assert.Equal(t, "i2c", m.Libraries[2].Name)
}

func TestPlanCommand_OutReplacesExisting(t *testing.T) {
	manifest := setupProject(t, nil)
	target := filepath.Join(t.TempDir(), "plan.json")

	out, _, err := executeCommand(t, "--config", manifest, "plan", "--out", target)
	require.NoError(t, err)
	assert.NotContains(t, out, "Replaced existing")

	out, _, err = executeCommand(t, "--config", manifest, "plan", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Replaced existing "+target)
	assert.Contains(t, out, "Wrote json plan")
}

func TestPlanCommand_Save(t *testing.T) {
	manifest := setupProject(t, nil)
	home := os.Getenv("HDLPLAN_HOME")

	out, _, err := executeCommand(t, "--config", manifest, "--json", "plan", "--format", "msgpack", "--save")
	require.NoError(t, err)

	var got exportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Files, 1)
	assert.Equal(t, planner.FormatMsgpack, got.Format)
	assert.Equal(t, filepath.Join(home, "plans"), filepath.Dir(got.Files[0]))
	assert.FileExists(t, got.Files[0])
}

func TestListCommand(t *testing.T) {
	manifest := setupProject(t, nil)

	out, _, err := executeCommand(t, "--config", manifest, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "i2c_tb")
	assert.Contains(t, out, "src/utils/**/*.vhd")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "ghdl, nvc")
}

func TestListCommand_JSON(t *testing.T) {
	manifest := setupProject(t, nil)

	out, _, err := executeCommand(t, "--config", manifest, "--json", "list")
	require.NoError(t, err)

	var got struct {
		Libraries []struct {
			Name  string `json:"name"`
			Files int    `json:"files"`
		} `json:"libraries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Libraries, 3)
	assert.Equal(t, "utils", got.Libraries[1].Name)
	assert.Equal(t, 2, got.Libraries[1].Files)
}

func TestValidateCommand(t *testing.T) {
	manifest := setupProject(t, nil)

	out, _, err := executeCommand(t, "--config", manifest, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid: 3 libraries, 4 files")
}

func TestValidateCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *testManifest)
		target error
		msg    string
	}{
		{
			name: "empty library",
			mutate: func(m *testManifest) {
				m.Libraries = append(m.Libraries, manifestLibrary{Name: "spi", Sources: []string{"src/spi/*.vhd"}})
			},
			target: cfgerr.ErrEmptySourceSet,
			msg:    "src/spi/*.vhd",
		},
		{
			name: "duplicate library",
			mutate: func(m *testManifest) {
				m.Libraries = append(m.Libraries, manifestLibrary{Name: "Utils", Sources: []string{"src/utils/*.vhd"}})
			},
			target: cfgerr.ErrDuplicateLibrary,
			msg:    "Utils",
		},
		{
			name: "unqualified option",
			mutate: func(m *testManifest) {
				m.CompileOptions = append(m.CompileOptions, manifestOption{Name: "a_flags"})
			},
			target: cfgerr.ErrConfiguration,
			msg:    "a_flags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := setupProject(t, tt.mutate)

			_, _, err := executeCommand(t, "--config", manifest, "validate")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, 1, cfgerr.ExitCode(err))
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	t.Setenv("HDLPLAN_HOME", t.TempDir())

	_, _, err := executeCommand(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "plan")
	assert.ErrorIs(t, err, cfgerr.ErrConfiguration)
}

func TestRunCommand(t *testing.T) {
	requireShell(t)
	stdinCopy := filepath.Join(t.TempDir(), "stdin.json")
	manifest := setupProject(t, func(m *testManifest) {
		m.Runner.Command = []string{
			"sh", "-c",
			`cat > "$0"; echo "sim=$HDLPLAN_SIMULATOR format=$HDLPLAN_PLAN_FORMAT args=$*"`,
			stdinCopy,
		}
	})

	out, _, err := executeCommand(t, "--config", manifest, "--simulator", "nvc", "run", "--", "--gui", "lib.tb_i2c.*")
	require.NoError(t, err)
	assert.Contains(t, out, "sim=nvc format=json args=--gui lib.tb_i2c.*")

	data, err := os.ReadFile(stdinCopy)
	require.NoError(t, err)
	m, err := planner.DecodeManifest(bytes.NewReader(data), planner.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "i2c_tb", m.Libraries[0].Name)
}

func TestRunCommand_ExitStatusPassesThrough(t *testing.T) {
	requireShell(t)
	manifest := setupProject(t, func(m *testManifest) {
		m.Runner.Command = []string{"sh", "-c", `cat > /dev/null; exit 7`}
	})

	_, _, err := executeCommand(t, "--config", manifest, "run")
	var exitErr *delegate.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 7, cfgerr.ExitCode(err))
}

func TestRunCommand_ConfigurationErrorSkipsEngine(t *testing.T) {
	requireShell(t)
	marker := filepath.Join(t.TempDir(), "ran")
	manifest := setupProject(t, func(m *testManifest) {
		m.Libraries = append(m.Libraries, manifestLibrary{Name: "spi", Sources: []string{"src/spi/*.vhd"}})
		m.Runner.Command = []string{"sh", "-c", `touch "$0"`, marker}
	})

	_, _, err := executeCommand(t, "--config", manifest, "run")
	require.ErrorIs(t, err, cfgerr.ErrEmptySourceSet)
	assert.NoFileExists(t, marker)
}

func TestRunCommand_NoRunnerCommand(t *testing.T) {
	manifest := setupProject(t, nil)

	_, _, err := executeCommand(t, "--config", manifest, "run")
	assert.ErrorIs(t, err, cfgerr.ErrConfiguration)
}

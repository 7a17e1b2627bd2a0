package cli

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv isolates a command run: HOME, config file and data directory
// all live under a temp dir.
type testEnv struct {
	home    string
	config  string
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	env := &testEnv{
		home:    home,
		config:  filepath.Join(home, "config.toml"),
		dataDir: filepath.Join(home, "data"),
	}
	t.Setenv("HOME", home)
	t.Setenv("LIGHTWAY_STORE_DATA_DIR", env.dataDir)
	return env
}

// run executes the root command and returns everything it printed.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// writeScans writes ISS scan files under a new root and returns it.
func writeScans(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
	return root
}

// scanFile builds an ISS scan file with rows points from 8800 eV.
func scanFile(uid, element string, rows int) []byte {
	var b strings.Builder
	for _, line := range []string{
		"# Facility.name: NSLS-II",
		"# Beamline.name: ISS (8-ID)",
		"# Scan.uid: " + uid,
		"# Element.symbol: " + element,
		"# Element.edge: K",
		"# Sample.name: " + element + " foil",
		"# ",
		"# energy i0 it ir iff aux1 aux2 aux3 aux4",
	} {
		b.WriteString(line + "\n")
	}
	for i := 0; i < rows; i++ {
		i0 := 1.0e5 - 10*float64(i)
		it := i0 * math.Exp(-(0.4 + 0.001*float64(i)))
		ir := i0 * math.Exp(-0.2)
		fmt.Fprintf(&b, "%.6f %.6f %.6f %.6f %.6f 0.1 0.2 0.3 0.4\n",
			8800.0+0.5*float64(i), i0, it, ir, 2000.0+float64(i))
	}
	return []byte(b.String())
}

// firstID returns the record ID on the first data row of TSV output.
func firstID(t *testing.T, out string) string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2, out)
	fields := strings.Split(lines[1], "\t")
	require.NotEmpty(t, fields[0])
	return fields[0]
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "lightway", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ingest", "postprocess", "records", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

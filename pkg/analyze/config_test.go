package analyze

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallFlags(t *testing.T) {
	c := DefaultConfig()
	flags := pflag.NewFlagSet("loops", pflag.ContinueOnError)
	c.InstallFlags(flags)

	err := flags.Parse([]string{
		"-p", "combined",
		"--key", "client",
		"--threshold", "90s",
		"-w", "method=GET",
		"-c", "method,request",
		"--format", "json",
		"--buffer-size", "4MiB",
		"--ip", "10.0.0.0/8",
		"--sort",
	})
	require.NoError(t, err)
	assert.Equal(t, "combined", c.Parser)
	assert.Equal(t, "client", c.Key)
	assert.Equal(t, 90*time.Second, c.Threshold)
	assert.Equal(t, map[string]string{"method": "GET"}, c.Where)
	assert.Equal(t, []string{"method", "request"}, c.Compare)
	assert.Equal(t, FormatJSON, c.Format)
	assert.EqualValues(t, 4<<20, c.BufferSize)
	assert.Len(t, c.Filter.Prefixes, 1)
	assert.True(t, c.Sort)

	assert.Error(t, flags.Parse([]string{"--format", "xml"}))
	assert.Error(t, flags.Parse([]string{"--progress", "sometimes"}))
}

func TestWhereFlag(t *testing.T) {
	type testCase struct {
		args     []string
		expected map[string]string
	}
	testCases := []testCase{
		{nil, map[string]string{"method": "POST", "status": "200"}},
		{[]string{"-w", ""}, map[string]string{}},
		{[]string{"--where", "none"}, map[string]string{}},
		{[]string{"-w", "method=GET"}, map[string]string{"method": "GET"}},
		{[]string{"-w", "method=GET", "-w", "status=302"}, map[string]string{"method": "GET", "status": "302"}},
		{[]string{"-w", "method=GET,status=302"}, map[string]string{"method": "GET", "status": "302"}},
		{[]string{"-w", "method=GET", "-w", ""}, map[string]string{}},
	}
	for _, tc := range testCases {
		c := DefaultConfig()
		flags := pflag.NewFlagSet("loops", pflag.ContinueOnError)
		c.InstallFlags(flags)
		require.NoError(t, flags.Parse(tc.args), "%v", tc.args)
		assert.Equal(t, tc.expected, c.Where, "%v", tc.args)
	}

	c := DefaultConfig()
	flags := pflag.NewFlagSet("loops", pflag.ContinueOnError)
	c.InstallFlags(flags)
	assert.Equal(t, "method=POST,status=200", flags.Lookup("where").DefValue)
	assert.Error(t, flags.Parse([]string{"-w", "method"}))
	assert.Error(t, flags.Parse([]string{"-w", "=GET"}))
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loopscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
parser: combined
key: client
threshold: 2m
where:
  method: GET
compare: [request]
skip_paths: ["/health"]
max_status: 0
sort: true
format: table
`), 0o644))

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	c := DefaultConfig()
	require.NoError(t, c.ApplyFile(fc, nil))
	assert.Equal(t, "combined", c.Parser)
	assert.Equal(t, "client", c.Key)
	assert.Equal(t, 2*time.Minute, c.Threshold)
	assert.Equal(t, map[string]string{"method": "GET"}, c.Where)
	assert.Equal(t, []string{"request"}, c.Compare)
	assert.Equal(t, []string{"/health"}, c.SkipPaths)
	assert.Equal(t, 0, c.MaxStatus)
	assert.True(t, c.Sort)
	assert.Equal(t, FormatTable, c.Format)

	// flags given on the command line win
	c = DefaultConfig()
	changed := func(flag string) bool { return flag == "parser" || flag == "max-status" }
	require.NoError(t, c.ApplyFile(fc, changed))
	assert.Equal(t, "tomcat", c.Parser)
	assert.Equal(t, 400, c.MaxStatus)
	assert.Equal(t, "client", c.Key)
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("colour: red\n"), 0o644))
	_, err = LoadConfigFile(unknown)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	fc, err := LoadConfigFile(empty)
	require.NoError(t, err)
	c := DefaultConfig()
	require.NoError(t, c.ApplyFile(fc, nil))
	assert.Equal(t, DefaultConfig().Parser, c.Parser)

	c = DefaultConfig()
	assert.Error(t, c.ApplyFile(&FileConfig{Threshold: "soon"}, nil))
	assert.Error(t, c.ApplyFile(&FileConfig{Format: "xml"}, nil))
}

func TestProgressFlag(t *testing.T) {
	var p ProgressFlag
	require.NoError(t, p.Set("yes"))
	assert.Equal(t, ProgressAlways, p)
	assert.True(t, p.Enabled(nil))
	require.NoError(t, p.Set("false"))
	assert.False(t, p.Enabled(os.Stderr))

	f, err := os.CreateTemp(t.TempDir(), "progress")
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, p.Set("auto"))
	assert.False(t, p.Enabled(f))
	assert.False(t, p.Enabled(nil))
}

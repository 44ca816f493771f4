package configpaths_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sb-child/dz-print/internal/configpaths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := configpaths.DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "dzprint"), dir)
}

func TestConfigCandidatePaths(t *testing.T) {
	type testCase struct {
		name     string
		userPath string
		loader   func(j, y, tm []string) []string
	}
	cases := []testCase{
		{name: "json", userPath: "/srv/label.json", loader: func(j, _, _ []string) []string { return j }},
		{name: "yaml", userPath: "/srv/label.yml", loader: func(_, y, _ []string) []string { return y }},
		{name: "toml", userPath: "/srv/label.toml", loader: func(_, _, tm []string) []string { return tm }},
		{name: "no extension", userPath: "/srv/label", loader: func(j, _, _ []string) []string { return j }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j, y, tm := configpaths.ConfigCandidatePaths(tc.userPath)
			paths := tc.loader(j, y, tm)
			require.NotEmpty(t, paths)
			assert.Equal(t, tc.userPath, paths[0])
		})
	}
}

func TestConfigCandidatePathsSystemDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no system config dir")
	}
	j, y, tm := configpaths.ConfigCandidatePaths("")
	assert.Contains(t, j, "/etc/dzprint/config.json")
	assert.Contains(t, y, "/etc/dzprint/print.yml")
	assert.Contains(t, tm, "/etc/dzprint/print.toml")
}

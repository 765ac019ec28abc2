package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{
			name:   "flag wins over env",
			flag:   "/explicit/config",
			envVal: "/env/config",
			want:   "/explicit/config",
		},
		{
			name:   "env wins when flag empty",
			envVal: "/env/config",
			want:   "/env/config",
		},
		{
			name: "CWD default when both empty",
			want: filepath.Join(cwd, DefaultConfigDirName),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name          string
		flag          string
		configYAMLVal string
		envVal        string
		want          string
	}{
		{
			name:          "flag wins over all",
			flag:          "/flag/data",
			configYAMLVal: "/config/data",
			envVal:        "/env/data",
			want:          "/flag/data",
		},
		{
			name:          "config.yaml wins over env",
			configYAMLVal: "/config/data",
			envVal:        "/env/data",
			want:          "/config/data",
		},
		{
			name:   "env wins when flag and config empty",
			envVal: "/env/data",
			want:   "/env/data",
		},
		{
			name: "CWD default when all empty",
			want: filepath.Join(cwd, DefaultDataDirName),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configYAMLVal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RelativeBecomesAbsolute(t *testing.T) {
	t.Run("config flag", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		got, err := ResolveConfigDir("relative/path")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})

	t.Run("config env", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "relative/env")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})

	t.Run("data config value", func(t *testing.T) {
		t.Setenv(EnvDataDir, "")
		got, err := ResolveDataDir("", "relative/config")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})
}

func TestResolve_GetwdFailure(t *testing.T) {
	orig := getwd
	getwd = func() (string, error) { return "", errors.New("no cwd") }
	t.Cleanup(func() { getwd = orig })
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")

	_, err := ResolveConfigDir("")
	assert.Error(t, err)
	_, err = ResolveDataDir("", "")
	assert.Error(t, err)
}

func TestResolveBackupDir(t *testing.T) {
	got, err := ResolveBackupDir("", "/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "backups"), got)

	got, err = ResolveBackupDir("/elsewhere", "/data")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", got)
}

// Config loading for the pustaka CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pustaka/internal/logger"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "PUSTAKA"

	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyLogLevel       = "log_level"
	cfgKeyLogFile        = "log_file"
	cfgKeyServeAddr      = "serve.addr"
	cfgKeyBackupSchedule = "serve.backup_schedule"
	cfgKeyBackupDir      = "serve.backup_dir"

	defaultServeAddr = "127.0.0.1:8080"
)

// envKeys are the keys that PUSTAKA_* environment variables override.
// data_dir is resolved separately so that config.yaml wins over
// PUSTAKA_DATA_DIR.
var envKeys = []string{
	cfgKeyLogLevel,
	cfgKeyLogFile,
	cfgKeyServeAddr,
	cfgKeyBackupSchedule,
	cfgKeyBackupDir,
}

// configFile is the structure written to config.yaml by init and on first
// run.
type configFile struct {
	Backend  string      `yaml:"backend"`
	DataDir  string      `yaml:"data_dir,omitempty"`
	LogLevel string      `yaml:"log_level"`
	LogFile  string      `yaml:"log_file,omitempty"`
	Serve    serveConfig `yaml:"serve"`
}

type serveConfig struct {
	Addr           string `yaml:"addr"`
	BackupSchedule string `yaml:"backup_schedule,omitempty"`
	BackupDir      string `yaml:"backup_dir,omitempty"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend:  types.BackendSQLite,
		DataDir:  dataDir,
		LogLevel: logger.DefaultLevel,
		Serve:    serveConfig{Addr: defaultServeAddr},
	}
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// config directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), defaultConfigFile("")); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLogLevel, logger.DefaultLevel)
	v.SetDefault(cfgKeyServeAddr, defaultServeAddr)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing writes cfg to path unless the file already exists.
func writeConfigIfMissing(path string, cfg configFile) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# pustaka configuration\n# Keys may be overridden by PUSTAKA_<KEY> environment variables,\n# for example PUSTAKA_SERVE_ADDR.\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}

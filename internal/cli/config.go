package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/userstamp/internal/paths"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// Config keys.
const (
	cfgKeyBackend          = "backend"
	cfgKeyDataDir          = "data_dir"
	cfgKeyDSN              = "dsn"
	cfgKeyCompatibility    = "compatibility_mode"
	cfgKeyDefaultActorType = "default_actor_type"
	cfgKeyLogLevel         = "log_level"
	cfgKeyLogFormat        = "log_format"
	cfgKeyListenAddr       = "listen_addr"
)

// Defaults applied before config.yaml and the environment.
var configDefaults = map[string]any{
	cfgKeyBackend:          types.BackendSQLite,
	cfgKeyCompatibility:    false,
	cfgKeyDefaultActorType: types.DefaultActorType,
	cfgKeyLogLevel:         "warn",
	cfgKeyLogFormat:        "text",
	cfgKeyListenAddr:       ":8080",
}

// load resolves the directories, reads config.yaml and USERSTAMP_*
// environment variables, and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir)
	if err != nil {
		return userError("%w", err)
	}
	dataDir, err := paths.ResolveDataDir(a.dataDir, cfg.DataDir)
	if err != nil {
		return sysError("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return userError("%w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// loadConfig reads config.yaml from configDir with Viper. A missing file is
// not an error.
func loadConfig(configDir string) (types.Config, error) {
	v := viper.New()
	for key, val := range configDefaults {
		v.SetDefault(key, val)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("USERSTAMP")
	v.AutomaticEnv()
	for _, key := range []string{cfgKeyDataDir, cfgKeyDSN} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(configDir string, cfg types.Config) (bool, error) {
	path := filepath.Join(configDir, paths.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# userstamp configuration\n")
	return true, os.WriteFile(path, append(header, data...), 0o644)
}

// newLogger builds a logger writing to out at the named level, formatted as
// "text" or "json".
func newLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	switch format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format %q: must be text or json", format)
	}
	return log, nil
}

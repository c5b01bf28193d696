package types

import "errors"

// Config holds backend selection and stamping defaults for Cupboard.Attach
// and the command-line tools.
type Config struct {
	Backend           string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir           string `json:"data_dir" yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	DSN               string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
	CompatibilityMode bool   `json:"compatibility_mode" yaml:"compatibility_mode" mapstructure:"compatibility_mode"`
	DefaultActorType  string `json:"default_actor_type,omitempty" yaml:"default_actor_type,omitempty" mapstructure:"default_actor_type"`
	LogLevel          string `json:"log_level,omitempty" yaml:"log_level,omitempty" mapstructure:"log_level"`
	LogFormat         string `json:"log_format,omitempty" yaml:"log_format,omitempty" mapstructure:"log_format"`
	ListenAddr        string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" mapstructure:"listen_addr"`
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDSNRequired    = errors.New("dsn is required for this backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendPostgres && c.DSN == "" {
		return ErrDSNRequired
	}
	return nil
}

// ActorTypeOrDefault returns DefaultActorType when none is configured.
func (c Config) ActorTypeOrDefault() string {
	if c.DefaultActorType == "" {
		return DefaultActorType
	}
	return c.DefaultActorType
}

// Package config provides configuration management for Overseer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jmgilman/overseer/internal/model"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/overseer"
	DefaultConfigFile = "config.yaml"
	DefaultDataDir    = ".local/share/overseer"
	DefaultListen     = "127.0.0.1:7337"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey      = errors.New("invalid configuration key")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrNoEditor        = errors.New("$EDITOR environment variable not set")
)

// validLogLevels contains the accepted log level names.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full Overseer configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Agent      AgentConfig      `mapstructure:"agent" validate:"required"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	Supervisor SupervisorConfig `mapstructure:"supervisor"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Watchdog   WatchdogConfig   `mapstructure:"watchdog"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds the control server settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`
}

// StorageConfig holds storage location configuration.
type StorageConfig struct {
	Logs    string `mapstructure:"logs" validate:"required"`
	Catalog string `mapstructure:"catalog" validate:"required"`
	Lock    string `mapstructure:"lock" validate:"required"`
}

// AgentConfig describes how the external agent is launched.
type AgentConfig struct {
	Command            string            `mapstructure:"command" validate:"required"`
	Args               []string          `mapstructure:"args"`
	Env                map[string]string `mapstructure:"env"`
	LogFileEnv         string            `mapstructure:"log_file_env"`
	LogLevelEnv        string            `mapstructure:"log_level_env"`
	ThreadFlag         string            `mapstructure:"thread_flag"`
	ContinuationMarker string            `mapstructure:"continuation_marker"`
	InterruptKey       string            `mapstructure:"interrupt_key"`
	Tools              []string          `mapstructure:"tools"`
}

// DefaultsConfig holds the per-instance settings applied to new instances.
type DefaultsConfig struct {
	AutoRestart                bool     `mapstructure:"auto_restart"`
	InactivityThresholdSeconds int      `mapstructure:"inactivity_threshold_seconds" validate:"min=0"`
	RequireApproval            bool     `mapstructure:"require_approval"`
	ErrorPatterns              []string `mapstructure:"error_patterns"`
	LogLevel                   string   `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	CommandAllowlist           []string `mapstructure:"command_allowlist"`
}

// SupervisorConfig tunes session handling.
type SupervisorConfig struct {
	StartupDelay       time.Duration `mapstructure:"startup_delay" validate:"min=0"`
	SubmitDelay        time.Duration `mapstructure:"submit_delay" validate:"min=0"`
	AuthSettleDelay    time.Duration `mapstructure:"auth_settle_delay" validate:"min=0"`
	OutputPollInterval time.Duration `mapstructure:"output_poll_interval" validate:"min=0"`
	OutputLines        int           `mapstructure:"output_lines" validate:"min=0"`
	CaptureLines       int           `mapstructure:"capture_lines" validate:"min=0"`
	OptimisticAuth     bool          `mapstructure:"optimistic_auth"`
	CreditPhrases      []string      `mapstructure:"credit_phrases"`
	AuthFailurePhrases []string      `mapstructure:"auth_failure_phrases"`
	ReadyPhrases       []string      `mapstructure:"ready_phrases"`
}

// MonitorConfig tunes agent log tailing.
type MonitorConfig struct {
	PollInterval         time.Duration `mapstructure:"poll_interval" validate:"min=0"`
	RefreshLines         int           `mapstructure:"refresh_lines" validate:"min=0"`
	RecentActivityWindow time.Duration `mapstructure:"recent_activity_window" validate:"min=0"`
}

// WatchdogConfig tunes the periodic health sweep.
type WatchdogConfig struct {
	Interval    time.Duration `mapstructure:"interval" validate:"min=0"`
	Throttle    time.Duration `mapstructure:"throttle" validate:"min=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"min=0"`
}

// LogConfig holds daemon logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// InstanceDefaults converts the defaults section into an InstanceConfig.
func (c *Config) InstanceDefaults() model.InstanceConfig {
	d := c.Defaults
	return model.InstanceConfig{
		AutoRestart:                model.Bool(d.AutoRestart),
		InactivityThresholdSeconds: d.InactivityThresholdSeconds,
		RequireApproval:            model.Bool(d.RequireApproval),
		ErrorPatterns:              append([]string(nil), d.ErrorPatterns...),
		LogLevel:                   d.LogLevel,
		CommandAllowlist:           append([]string(nil), d.CommandAllowlist...),
	}
}

// AgentEnv returns agent.env with upper-cased names. Viper lower-cases map
// keys, and environment variable names are conventionally upper case.
func (c *Config) AgentEnv() map[string]string {
	env := make(map[string]string, len(c.Agent.Env))
	for k, v := range c.Agent.Env {
		env[strings.ToUpper(k)] = v
	}
	return env
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("OVERSEER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("server.listen", "OVERSEER_LISTEN")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("agent.command", "OVERSEER_AGENT")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("log.level", "OVERSEER_LOG_LEVEL")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("server.listen", DefaultListen)

	l.v.SetDefault("storage.logs", "~/.local/share/overseer/logs")
	l.v.SetDefault("storage.catalog", "~/.local/share/overseer/catalog.json")
	l.v.SetDefault("storage.lock", "~/.local/share/overseer/overseer.lock")

	l.v.SetDefault("agent.command", "amp")
	l.v.SetDefault("agent.args", []string{})
	l.v.SetDefault("agent.env", map[string]string{})
	l.v.SetDefault("agent.log_file_env", "AMP_LOG_FILE")
	l.v.SetDefault("agent.log_level_env", "AMP_LOG_LEVEL")
	l.v.SetDefault("agent.thread_flag", "--thread")
	l.v.SetDefault("agent.continuation_marker", `\`)
	l.v.SetDefault("agent.interrupt_key", "C-c")
	l.v.SetDefault("agent.tools", []string{})

	l.v.SetDefault("defaults.auto_restart", true)
	l.v.SetDefault("defaults.inactivity_threshold_seconds", 300)
	l.v.SetDefault("defaults.require_approval", false)
	l.v.SetDefault("defaults.error_patterns", []string{})
	l.v.SetDefault("defaults.log_level", "info")
	l.v.SetDefault("defaults.command_allowlist", []string{})

	l.v.SetDefault("supervisor.startup_delay", "1500ms")
	l.v.SetDefault("supervisor.submit_delay", "300ms")
	l.v.SetDefault("supervisor.auth_settle_delay", "5s")
	l.v.SetDefault("supervisor.output_poll_interval", "2s")
	l.v.SetDefault("supervisor.output_lines", 1000)
	l.v.SetDefault("supervisor.capture_lines", 200)
	l.v.SetDefault("supervisor.optimistic_auth", true)
	l.v.SetDefault("supervisor.credit_phrases", []string{})
	l.v.SetDefault("supervisor.auth_failure_phrases", []string{})
	l.v.SetDefault("supervisor.ready_phrases", []string{})

	l.v.SetDefault("monitor.poll_interval", "500ms")
	l.v.SetDefault("monitor.refresh_lines", 200)
	l.v.SetDefault("monitor.recent_activity_window", "10s")

	l.v.SetDefault("watchdog.interval", "30s")
	l.v.SetDefault("watchdog.throttle", "60s")
	l.v.SetDefault("watchdog.concurrency", 8)

	l.v.SetDefault("log.level", "info")
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Storage.Logs = l.expandPath(cfg.Storage.Logs)
	cfg.Storage.Catalog = l.expandPath(cfg.Storage.Catalog)
	cfg.Storage.Lock = l.expandPath(cfg.Storage.Lock)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// All returns every setting as a nested map.
func (l *Loader) All() map[string]any {
	return l.v.AllSettings()
}

// Set sets a configuration value by dot-notation key and writes the file.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if key == "log.level" || key == "defaults.log_level" {
		if value != "" && !validLogLevels[value] {
			return fmt.Errorf("%w: %s (valid: debug, info, warn, error)", ErrInvalidLogLevel, value)
		}
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	if validKeys[key] {
		return nil
	}

	// agent.env is a map; its entries are addressed as agent.env.<NAME>.
	if rest, ok := strings.CutPrefix(key, "agent.env."); ok && rest != "" && !strings.Contains(rest, ".") {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		// Recurse into nested structs (but not maps)
		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}

// IsValidLogLevel reports whether name is an accepted log level.
func IsValidLogLevel(name string) bool {
	return validLogLevels[name]
}

package config

import (
	"dario.cat/mergo"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Auth    AuthConfig    `yaml:"auth,omitempty"`
	API     APIConfig     `yaml:"api,omitempty"`
	Player  PlayerConfig  `yaml:"player,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	// Bearer token sent with every API request.  Empty means requests go out unauthenticated.
	Token string `yaml:"token,omitempty"`
}

// APIConfig contains settings for the protocol backend
type APIConfig struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	MaxAttempts    int    `yaml:"max_attempts,omitempty"`
}

// PlayerConfig contains media player settings
type PlayerConfig struct {
	Type string `yaml:"type,omitempty"` // "mpv"
	Path string `yaml:"path,omitempty"`
	Args string `yaml:"args,omitempty"`
}

// UIConfig contains UI display preferences
type UIConfig struct {
	Theme             string `yaml:"theme,omitempty"` // "dark", "light"
	ControlsTimeoutMs int    `yaml:"controls_timeout_ms,omitempty"`
	PollIntervalMs    int    `yaml:"poll_interval_ms,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply .env file and environment variable overrides, with the process environment taking precedence
// 6. Validate the result
func Load() (*Config, error) {
	// 1. Start with base defaults
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	// 2. If no config file exists on disk, then write a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// If there is an error saving the default config, then still let the application startup using the defaults.
		_ = save(cfg, configPath)
	}

	// 3. Apply dynamic defaults if necessary
	applyDynamicDefaults(cfg)

	// 4. Load the config from disk and merge it into the base defaults
	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	// 5. Apply the overrides which take precedence over everything on disk
	dotenv, err := loadDotEnv()
	if err != nil {
		return nil, err
	}
	applyEnvVarOverrides(cfg, dotenv)

	// 6. Reject or repair values Shuchu cannot run with
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate fails on a missing API address and resets out of range tunables to their defaults
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}

	defaults := createBaseDefaultConfig()
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaults.API.TimeoutSeconds
	}
	if c.API.MaxAttempts < 1 {
		c.API.MaxAttempts = 1
	}
	if c.Player.Type == "" {
		c.Player.Type = defaults.Player.Type
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.ControlsTimeoutMs <= 0 {
		c.UI.ControlsTimeoutMs = defaults.UI.ControlsTimeoutMs
	}
	if c.UI.PollIntervalMs <= 0 {
		c.UI.PollIntervalMs = defaults.UI.PollIntervalMs
	}
	return nil
}

// APITimeout is the per request timeout of the REST client
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// ControlsTimeout is how long the player controls stay up without input
func (c *Config) ControlsTimeout() time.Duration {
	return time.Duration(c.UI.ControlsTimeoutMs) * time.Millisecond
}

// PollInterval is how often the playback position is read while playing
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.UI.PollIntervalMs) * time.Millisecond
}

// applyDynamicDefaults sets runtime-determined default values for any properties that haven't been explicitly configured.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk.  Overrides from
// the environment are never written back.
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv("SHUCHU_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "shuchu", "config.yaml"), nil
}

func createBaseDefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{},
		API: APIConfig{
			BaseURL:        "http://localhost:5000/api",
			TimeoutSeconds: 15,
			MaxAttempts:    3,
		},
		Player: PlayerConfig{
			Type: "mpv",
			Path: "mpv",
		},
		UI: UIConfig{
			Theme:             "dark",
			ControlsTimeoutMs: 3000,
			PollIntervalMs:    1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "shuchu.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\shuchu\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "shuchu", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "shuchu", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/shuchu
		basePath = filepath.Join(homedir, "Library", "Logs", "shuchu")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "shuchu", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "shuchu", "logs")
		}
	}

	if err := os.MkdirAll(basePath, 0700); err != nil {
		return filepath.Join(".", "shuchu.log")
	}
	return filepath.Join(basePath, "shuchu.log")
}

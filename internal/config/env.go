package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []envVar{
	{
		// Only here for documentation purposes.  It is handled prior to loading the config.
		name:  "SHUCHU_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {}, // Special case, no-op
	},
	{
		// Only here for documentation purposes.  Read by loadDotEnv.
		name:  "SHUCHU_CONFIG_DOTENV_PATH",
		desc:  "Sets the path to a .env file with SHUCHU_CONFIG_* overrides.  Default: .env in the working directory",
		apply: func(c *Config, s string) {},
	},
	{
		name:  "SHUCHU_CONFIG_AUTH_TOKEN",
		desc:  "Sets the bearer token used for API requests.  Default: None",
		apply: func(c *Config, s string) { c.Auth.Token = s },
	},
	{
		name:  "SHUCHU_CONFIG_API_BASE_URL",
		desc:  "Sets the base URL of the protocol API.  Default: http://localhost:5000/api",
		apply: func(c *Config, s string) { c.API.BaseURL = s },
	},
	{
		name:  "SHUCHU_CONFIG_API_TIMEOUT_SECONDS",
		desc:  "Sets the per-request timeout in seconds.  Default: 15",
		apply: func(c *Config, s string) { applyInt(&c.API.TimeoutSeconds, s) },
	},
	{
		name:  "SHUCHU_CONFIG_API_MAX_ATTEMPTS",
		desc:  "Sets how many times a failed request is attempted.  Default: 3",
		apply: func(c *Config, s string) { applyInt(&c.API.MaxAttempts, s) },
	},
	{
		name:  "SHUCHU_CONFIG_PLAYER_TYPE",
		desc:  "Sets the video player type.  Only `mpv` is supported.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Type = s },
	},
	{
		name:  "SHUCHU_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to a video player binary.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Path = s },
	},
	{
		name:  "SHUCHU_CONFIG_PLAYER_ARGS",
		desc:  "Sets additional video player arguments.  Default: None",
		apply: func(c *Config, s string) { c.Player.Args = s },
	},
	{
		name:  "SHUCHU_CONFIG_UI_THEME",
		desc:  "Sets the colour theme.  One of: dark, light.  Default: dark",
		apply: func(c *Config, s string) { c.UI.Theme = s },
	},
	{
		name:  "SHUCHU_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		name:  "SHUCHU_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
}

// applyEnvVarOverrides applies overrides from the process environment, falling back to values read from a .env file
func applyEnvVarOverrides(c *Config, dotenv map[string]string) {
	for _, envVar := range supportedEnvVars {
		value := os.Getenv(envVar.name)
		if value == "" {
			value = dotenv[envVar.name]
		}
		if value != "" {
			envVar.apply(c, value)
		}
	}
}

// loadDotEnv reads the .env file without touching the process environment.  A missing file is not an error.
func loadDotEnv() (map[string]string, error) {
	path := os.Getenv("SHUCHU_CONFIG_DOTENV_PATH")
	if path == "" {
		path = ".env"
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse dotenv file %s: %w", path, err)
	}
	return values, nil
}

// applyInt ignores values that are not positive integers
func applyInt(target *int, s string) {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		*target = n
	}
}

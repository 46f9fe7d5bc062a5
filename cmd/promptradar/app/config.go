package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/store"
)

// EnvPrefix prefixes every environment variable promptradar reads.
const EnvPrefix = "PROMPTRADAR"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Settings file
	ConfigFile string

	// Radar configuration
	ToolsFile    string
	DataDir      string
	Store        string
	FetchTimeout time.Duration
	Concurrency  int
	UserAgent    string
	MetricsFile  string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (PROMPTRADAR_*)
// 3. .env files
// 4. Settings file (configFile, or .promptradar.yaml in . or $HOME)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("settings", "cannot read "+configFile, err)
		}
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".promptradar")
		// a missing settings file is fine
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("settings", "cannot read settings file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		ToolsFile:    v.GetString("tools_file"),
		DataDir:      v.GetString("data_dir"),
		Store:        v.GetString("store"),
		FetchTimeout: v.GetDuration("fetch_timeout"),
		Concurrency:  v.GetInt("concurrency"),
		UserAgent:    v.GetString("user_agent"),
		MetricsFile:  v.GetString("metrics_file"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tools_file", constants.DefaultConfigPath)
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("store", constants.DefaultStoreBackend)
	v.SetDefault("fetch_timeout", constants.DefaultFetchTimeout)
	v.SetDefault("concurrency", constants.DefaultConcurrency)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks values that flags and settings cannot constrain and
// normalizes the store backend name.
func (c *Config) Validate() error {
	backend, err := store.ParseBackend(c.Store)
	if err != nil {
		return err
	}
	c.Store = string(backend)
	if c.FetchTimeout <= 0 {
		return &errors.ValidationError{Field: "fetch_timeout", Value: c.FetchTimeout, Message: "must be positive"}
	}
	if c.Concurrency < 1 || c.Concurrency > constants.MaxConcurrency {
		return &errors.ValidationError{Field: "concurrency", Value: c.Concurrency, Message: "out of range"}
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

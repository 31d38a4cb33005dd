// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Profile() ProfileConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserExecutable(string)
	SetBrowserUserDataDir(string)
	SetBrowserPort(int)
	SetBrowserIncognito(bool)
	SetBrowserSandbox(bool)

	// Profile Setters
	SetProfileOS(string)
	SetProfileLocale(string)
	SetProfileTimezone(string)
}

// Config holds the entire application configuration. Access normally goes
// through the Interface getters; the fields stay exported for unmarshaling.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	ProfileCfg ProfileConfig `mapstructure:"profile" yaml:"profile"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Profile() ProfileConfig { return c.ProfileCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)        { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserExecutable(path string) { c.BrowserCfg.Executable = path }
func (c *Config) SetBrowserUserDataDir(dir string) { c.BrowserCfg.UserDataDir = dir }
func (c *Config) SetBrowserPort(p int)             { c.BrowserCfg.Port = p }
func (c *Config) SetBrowserIncognito(b bool)       { c.BrowserCfg.Incognito = b }
func (c *Config) SetBrowserSandbox(b bool)         { c.BrowserCfg.Sandbox = b }

func (c *Config) SetProfileOS(os string)       { c.ProfileCfg.OS = os }
func (c *Config) SetProfileLocale(l string)    { c.ProfileCfg.Locale = l }
func (c *Config) SetProfileTimezone(tz string) { c.ProfileCfg.Timezone = tz }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for launching the browser process.
type BrowserConfig struct {
	Executable        string        `mapstructure:"executable" yaml:"executable"`
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	HeadlessNew       bool          `mapstructure:"headless_new" yaml:"headless_new"`
	Incognito         bool          `mapstructure:"incognito" yaml:"incognito"`
	Sandbox           bool          `mapstructure:"sandbox" yaml:"sandbox"`
	Hidden            bool          `mapstructure:"hidden" yaml:"hidden"`
	Port              int           `mapstructure:"port" yaml:"port"`
	UserDataDir       string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	DisableHTTPSFirst bool          `mapstructure:"disable_https_first" yaml:"disable_https_first"`
	LaunchTimeout     time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	Extensions        []string      `mapstructure:"extensions" yaml:"extensions"`
	WindowWidth       int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height" yaml:"window_height"`
}

// ProfileConfig selects the fingerprint the browser presents.
type ProfileConfig struct {
	OS            string `mapstructure:"os" yaml:"os"`
	ChromeVersion int    `mapstructure:"chrome_version" yaml:"chrome_version"`
	GPU           string `mapstructure:"gpu" yaml:"gpu"`
	MemoryGB      int    `mapstructure:"memory_gb" yaml:"memory_gb"`
	CPUCores      int    `mapstructure:"cpu_cores" yaml:"cpu_cores"`
	Locale        string `mapstructure:"locale" yaml:"locale"`
	Timezone      string `mapstructure:"timezone" yaml:"timezone"`
	ScreenWidth   int    `mapstructure:"screen_width" yaml:"screen_width"`
	ScreenHeight  int    `mapstructure:"screen_height" yaml:"screen_height"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "chaser")
	v.SetDefault("logger.log_file", "chaser.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.headless_new", false)
	v.SetDefault("browser.incognito", false)
	v.SetDefault("browser.sandbox", true)
	v.SetDefault("browser.hidden", true)
	v.SetDefault("browser.port", 0)
	v.SetDefault("browser.ignore_tls_errors", true)
	v.SetDefault("browser.disable_https_first", false)
	v.SetDefault("browser.launch_timeout", "20s")
	v.SetDefault("browser.request_timeout", "30s")
	v.SetDefault("browser.window_width", 0)
	v.SetDefault("browser.window_height", 0)

	// -- Profile --
	v.SetDefault("profile.os", "linux")
	v.SetDefault("profile.chrome_version", 129)
	v.SetDefault("profile.memory_gb", 8)
	v.SetDefault("profile.cpu_cores", 8)
	v.SetDefault("profile.locale", "en-US")
	v.SetDefault("profile.timezone", "America/New_York")
	v.SetDefault("profile.screen_width", 1920)
	v.SetDefault("profile.screen_height", 1080)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BrowserCfg.Port < 0 || c.BrowserCfg.Port > 65535 {
		return fmt.Errorf("browser.port must be between 0 and 65535")
	}
	if c.BrowserCfg.LaunchTimeout < 0 {
		return fmt.Errorf("browser.launch_timeout must not be negative")
	}
	if (c.BrowserCfg.WindowWidth == 0) != (c.BrowserCfg.WindowHeight == 0) {
		return fmt.Errorf("browser.window_width and browser.window_height must be set together")
	}
	if err := c.ProfileCfg.Validate(); err != nil {
		return fmt.Errorf("profile configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the ProfileConfig settings.
func (p *ProfileConfig) Validate() error {
	switch p.OS {
	case "windows", "macos-intel", "macos-arm", "linux":
	default:
		return fmt.Errorf("profile.os must be one of windows, macos-intel, macos-arm, linux")
	}
	if p.ChromeVersion <= 0 {
		return fmt.Errorf("profile.chrome_version must be greater than 0")
	}
	if p.MemoryGB <= 0 || p.CPUCores <= 0 {
		return fmt.Errorf("profile.memory_gb and profile.cpu_cores must be positive")
	}
	if p.ScreenWidth <= 0 || p.ScreenHeight <= 0 {
		return fmt.Errorf("profile.screen_width and profile.screen_height must be positive")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all configuration of the gradeweb server.
type Config struct {
	// Application
	App AppConfig `yaml:"app"`

	// Static page + proxy server
	Web WebConfig `yaml:"web"`

	// Upstream calculation server
	CalcAPI CalcAPIConfig `yaml:"calc_api"`

	// Observability
	Observability ObservabilityConfig `yaml:"observability"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `yaml:"name"`
	Environment Environment `yaml:"environment"`
	Debug       bool        `yaml:"debug"`
	Version     string      `yaml:"version"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WebConfig holds settings of the server that hosts the page and the wasm bundle.
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Directory with index.html, wasm_exec.js and gradeform.wasm
	StaticDir string `yaml:"static_dir"`

	// Request paths forwarded to the calculation server
	ProxyPaths []string `yaml:"proxy_paths"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// CalcAPIConfig holds settings of the calculation server the page talks to.
type CalcAPIConfig struct {
	// Base URL of the server owning /calculate
	// Example: http://127.0.0.1:5000
	BaseURL string `yaml:"base_url"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:            "gradeform",
			Environment:     EnvDevelopment,
			Version:         "1.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Web: WebConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			StaticDir:    "web",
			ProxyPaths:   []string{"/calculate"},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		CalcAPI: CalcAPIConfig{
			BaseURL:        "http://127.0.0.1:5000",
			RequestTimeout: 10 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Load builds the configuration in three layers: Default, then the YAML file
// named by GRADEFORM_CONFIG_FILE (if any), then environment variables.
// A .env file in the working directory (or the file named by GRADEFORM_ENV_FILE)
// is read into the environment first; variables already set in the environment win.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("GRADEFORM_ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("GRADEFORM_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.App = loadAppConfig(cfg.App)
	cfg.Web = loadWebConfig(cfg.Web)
	cfg.CalcAPI = loadCalcAPIConfig(cfg.CalcAPI)
	cfg.Observability = loadObservabilityConfig(cfg.Observability)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads path into the process environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadFile decodes the YAML file at path over cfg. Keys absent from the
// file keep their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadAppConfig(base AppConfig) AppConfig {
	env := Environment(getEnv("APP_ENV", string(base.Environment)))

	return AppConfig{
		Name:            getEnv("APP_NAME", base.Name),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", base.Debug),
		Version:         getEnv("APP_VERSION", base.Version),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", base.ShutdownTimeout),
	}
}

func loadWebConfig(base WebConfig) WebConfig {
	return WebConfig{
		Host:         getEnv("WEB_HOST", base.Host),
		Port:         getEnvInt("WEB_PORT", base.Port),
		StaticDir:    getEnv("WEB_STATIC_DIR", base.StaticDir),
		ProxyPaths:   getEnvStringSlice("WEB_PROXY_PATHS", base.ProxyPaths),
		ReadTimeout:  getEnvDuration("WEB_READ_TIMEOUT", base.ReadTimeout),
		WriteTimeout: getEnvDuration("WEB_WRITE_TIMEOUT", base.WriteTimeout),
		IdleTimeout:  getEnvDuration("WEB_IDLE_TIMEOUT", base.IdleTimeout),
	}
}

func loadCalcAPIConfig(base CalcAPIConfig) CalcAPIConfig {
	return CalcAPIConfig{
		BaseURL:        getEnv("CALC_API_URL", base.BaseURL),
		RequestTimeout: getEnvDuration("CALC_API_TIMEOUT", base.RequestTimeout),
	}
}

func loadObservabilityConfig(base ObservabilityConfig) ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel: getEnv("LOG_LEVEL", base.LogLevel),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		errs = append(errs, "WEB_PORT must be 1-65535")
	}

	if c.Web.StaticDir == "" {
		errs = append(errs, "WEB_STATIC_DIR is required")
	}

	for _, p := range c.Web.ProxyPaths {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Sprintf("WEB_PROXY_PATHS entry %q must start with /", p))
		}
	}

	if u, err := url.Parse(c.CalcAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "CALC_API_URL must be an absolute URL")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns host:port of the web server.
func (w WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}

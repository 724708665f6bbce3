// Package config provides configuration management for the site using Viper
// for loading from files, environment variables, and command-line flags.
//
// Values come from .solid.yml (or the file named by --config /
// SOLID_CONFIG_FILE), SOLID_ prefixed environment variables and bound flags.
// Load fills defaults for anything left unset and validates the result.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Site        SiteConfig        `mapstructure:"site" yaml:"site"`
	Build       BuildConfig       `mapstructure:"build" yaml:"build"`
	Content     ContentConfig     `mapstructure:"content" yaml:"content"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	Environment    string   `mapstructure:"environment" yaml:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// SiteConfig holds the values used in page metadata and links.
type SiteConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	Author      string `mapstructure:"author" yaml:"author"`
	AnalyticsID string `mapstructure:"analytics_id" yaml:"analytics_id"`
}

type BuildConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Minify    bool   `mapstructure:"minify" yaml:"minify"`
	Sitemap   bool   `mapstructure:"sitemap" yaml:"sitemap"`
	Robots    bool   `mapstructure:"robots" yaml:"robots"`
}

// ContentConfig selects where examples and page copy are read from. An empty
// Dir serves the content embedded in the binary.
type ContentConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type DevelopmentConfig struct {
	HotReload bool     `mapstructure:"hot_reload" yaml:"hot_reload"`
	Watch     []string `mapstructure:"watch" yaml:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

const (
	DefaultHost      = "localhost"
	DefaultPort      = 8080
	DefaultSiteName  = "SolidPrinciples.org"
	DefaultBaseURL   = "https://www.solidprinciples.org"
	DefaultOutputDir = "dist"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormats   = []string{"text", "json"}
	validEnvironments = []string{"development", "production", "test"}
)

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Server defaults
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if !viper.IsSet("server.port") {
		config.Server.Port = DefaultPort
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	// Site defaults
	if config.Site.Name == "" {
		config.Site.Name = DefaultSiteName
	}
	if config.Site.BaseURL == "" {
		config.Site.BaseURL = DefaultBaseURL
	}
	config.Site.BaseURL = strings.TrimSuffix(config.Site.BaseURL, "/")
	if config.Site.Author == "" {
		config.Site.Author = config.Site.Name + " Team"
	}

	// Build defaults (viper bool workaround: only default when unset)
	if config.Build.OutputDir == "" {
		config.Build.OutputDir = DefaultOutputDir
	}
	if !viper.IsSet("build.sitemap") {
		config.Build.Sitemap = true
	}
	if !viper.IsSet("build.robots") {
		config.Build.Robots = true
	}

	// Development defaults
	if !viper.IsSet("development.hot_reload") {
		config.Development.HotReload = true
	}
	if viper.IsSet("development.watch") && len(config.Development.Watch) == 0 {
		config.Development.Watch = viper.GetStringSlice("development.watch")
	}
	if len(config.Development.Watch) == 0 {
		config.Development.Watch = []string{"**/*.txt", "**/*.md", "**/*.yaml"}
	}

	// Log defaults; the root command binds --log-level to the flat key
	if config.Log.Level == "" {
		config.Log.Level = viper.GetString("log-level")
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateSiteConfig(&config.Site); err != nil {
		return fmt.Errorf("site config: %w", err)
	}
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	if config.Content.Dir != "" {
		if err := validatePath(config.Content.Dir); err != nil {
			return fmt.Errorf("content config: dir: %w", err)
		}
	}
	if err := validateDevelopmentConfig(&config.Development); err != nil {
		return fmt.Errorf("development config: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", "/"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	if !contains(validEnvironments, config.Environment) {
		return fmt.Errorf("environment %q must be one of %s", config.Environment, strings.Join(validEnvironments, ", "))
	}

	for _, origin := range config.AllowedOrigins {
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("allowed origin %q must be an http(s) origin", origin)
		}
	}

	return nil
}

func validateSiteConfig(config *SiteConfig) error {
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q must use http or https", config.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q has no host", config.BaseURL)
	}
	if strings.ContainsAny(config.AnalyticsID, "<>\"' ") {
		return fmt.Errorf("analytics_id contains invalid characters")
	}
	return nil
}

// validateBuildConfig validates build configuration values
func validateBuildConfig(config *BuildConfig) error {
	if err := validatePath(config.OutputDir); err != nil {
		return fmt.Errorf("output_dir: %w", err)
	}
	if filepath.Clean(config.OutputDir) == "." {
		return fmt.Errorf("output_dir cannot be the working directory")
	}
	return nil
}

func validateDevelopmentConfig(config *DevelopmentConfig) error {
	for _, pattern := range config.Watch {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid watch pattern %q", pattern)
		}
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if !contains(validLogLevels, config.Level) {
		return fmt.Errorf("level %q must be one of %s", config.Level, strings.Join(validLogLevels, ", "))
	}
	if !contains(validLogFormats, config.Format) {
		return fmt.Errorf("format %q must be one of %s", config.Format, strings.Join(validLogFormats, ", "))
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Package cmd provides the command-line interface of the site.
//
// Configuration is read from, highest priority first:
//  1. command-line flags
//  2. SOLID_ prefixed environment variables (SOLID_SERVER_PORT, SOLID_SITE_BASE_URL, ...)
//  3. the config file: --config, else SOLID_CONFIG_FILE, else .solid.yml
//  4. built-in defaults
package cmd

import (
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/errors"
	"github.com/solidprinciples/solid/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logFormat = newEnum("text", "text", "json")
)

var rootCmd = &cobra.Command{
	Use:   "solid",
	Short: "Serve and export the SOLID principles site",
	Long: `solid serves the SOLID principles site: five principles, each with a
"without" and a "with" code example in eleven languages.

Quick Start:
  solid serve                 Start the server with live reload
  solid build                 Export the site as static files
  solid routes                List every page and its content status
  solid audit                 Check exported pages for missing metadata
  solid doctor                Check configuration and content`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .solid.yml, can also use SOLID_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.Var(logFormat, "log-format", "log format "+logFormat.Usage())
	flags.String("content-dir", "", "read content from this directory instead of the embedded copy")

	viper.BindPFlag("log-level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))
	viper.BindPFlag("content.dir", flags.Lookup("content-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SOLID_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".solid")
	}

	viper.SetEnvPrefix("SOLID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// configPath names the config file for messages.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return ".solid.yml"
}

// loadConfig reads the config file, if any, then loads and validates the
// configuration. Failures carry suggestions. Only the default .solid.yml may
// be absent; an explicitly named file must exist.
func loadConfig() (*config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.NewEnhancedError("Failed to read configuration", err,
				errors.ConfigurationError(err.Error(), configPath()))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewEnhancedError("Failed to load configuration", err,
			errors.ConfigurationError(err.Error(), configPath()))
	}
	return cfg, nil
}

// newLogger builds the CLI logger from cfg. Logs go to w, normally stderr,
// so machine readable output on stdout stays clean.
func newLogger(cfg *config.Config, w io.Writer) (*logging.SiteLogger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: w,
	}), nil
}

func contentErr(err error, dir string) error {
	return errors.NewEnhancedError("Failed to load content", err,
		errors.ContentError(err.Error(), dir))
}

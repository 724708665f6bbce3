package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, content and environment",
	Long: `Diagnose the setup before serving or building the site. It checks:

- the configuration file and its values
- that content loads, and which code examples are not yet written
- that the output directory can be written
- that the configured port is free
- environment specific settings

Examples:
  solid doctor                  # Human readable report
  solid doctor --format json    # Output as JSON for tooling
  solid doctor --format yaml`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var (
	doctorVerbose bool
	doctorFormat  = newEnum("text", "text", "json", "yaml")
)

// Check statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
	statusInfo    = "info"
)

// DiagnosticResult is the outcome of one check.
type DiagnosticResult struct {
	Name       string                 `json:"name" yaml:"name"`
	Category   string                 `json:"category" yaml:"category"`
	Status     string                 `json:"status" yaml:"status"`
	Message    string                 `json:"message" yaml:"message"`
	Suggestion string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport is the complete diagnosis.
type DoctorReport struct {
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Version   string             `json:"version" yaml:"version"`
	Results   []DiagnosticResult `json:"results" yaml:"results"`
	Summary   ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary counts results by status.
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Info     int `json:"info" yaml:"info"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show check details")
	addFormatFlag(doctorCmd, doctorFormat)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, cfgErr := loadConfig()
	report := diagnose(cmd.Context(), cfg, cfgErr)

	out := cmd.OutOrStdout()
	if err := outputReport(out, report, doctorFormat.String()); err != nil {
		return fmt.Errorf("failed to output report: %w", err)
	}
	if report.Summary.Errors > 0 {
		return fmt.Errorf("doctor found %d error(s)", report.Summary.Errors)
	}
	return nil
}

// diagnose runs every check. When the configuration failed to load only the
// configuration check is reported.
func diagnose(ctx context.Context, cfg *config.Config, cfgErr error) *DoctorReport {
	report := &DoctorReport{
		Timestamp: time.Now(),
		Version:   version.GetShortVersion(),
	}

	if cfgErr != nil {
		report.Results = append(report.Results, DiagnosticResult{
			Name:       "Configuration",
			Category:   "config",
			Status:     statusError,
			Message:    cfgErr.Error(),
			Suggestion: "Fix " + configPath() + " or the SOLID_ environment variables",
		})
	} else {
		checks := []func(context.Context, *config.Config) DiagnosticResult{
			checkConfiguration,
			checkContent,
			checkOutputDir,
			checkPortAvailability,
			checkEnvironment,
		}
		for _, check := range checks {
			report.Results = append(report.Results, check(ctx, cfg))
		}
	}

	report.Summary = calculateSummary(report.Results)
	return report
}

func checkConfiguration(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Configuration",
		Category: "config",
		Status:   statusOK,
		Details: map[string]interface{}{
			"site":     cfg.Site.Name,
			"base_url": cfg.Site.BaseURL,
		},
	}
	if used := viper.ConfigFileUsed(); used != "" {
		result.Message = "Loaded " + used
	} else {
		result.Status = statusInfo
		result.Message = "No config file, using defaults and environment"
		result.Suggestion = "Create .solid.yml to customize the site"
	}
	return result
}

func checkContent(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{Name: "Content", Category: "content"}

	source := "embedded"
	if cfg.Content.Dir != "" {
		source = cfg.Content.Dir
	}

	store, err := content.Open(cfg.Content.Dir)
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		result.Suggestion = "Check pages.yaml and the examples/<principle>/<language> directories"
		return result
	}

	cells := store.Coverage()
	missing := store.Missing()
	partial := 0
	for _, c := range cells {
		if c.Present && !c.Complete {
			partial++
		}
	}

	result.Details = map[string]interface{}{
		"source":  source,
		"pairs":   len(cells),
		"missing": len(missing),
		"partial": partial,
	}
	switch {
	case len(missing) > 0:
		result.Status = statusWarning
		result.Message = fmt.Sprintf("%d of %d examples not written: %s", len(missing), len(cells), strings.Join(missing, ", "))
		result.Suggestion = "Missing examples render placeholder panels"
	case partial > 0:
		result.Status = statusWarning
		result.Message = fmt.Sprintf("%d examples have only one side", partial)
	default:
		result.Status = statusOK
		result.Message = fmt.Sprintf("All %d examples loaded from %s content", len(cells), source)
	}
	return result
}

func checkOutputDir(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Output directory",
		Category: "build",
		Details:  map[string]interface{}{"dir": cfg.Build.OutputDir},
	}

	dir := cfg.Build.OutputDir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// The nearest existing parent must be writable.
		for dir = filepath.Dir(dir); ; dir = filepath.Dir(dir) {
			if _, err := os.Stat(dir); err == nil || dir == filepath.Dir(dir) {
				break
			}
		}
	}

	probe, err := os.CreateTemp(dir, ".solid-doctor-*")
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot write to %s: %v", dir, err)
		result.Suggestion = "Choose another directory with --output or build.output_dir"
		return result
	}
	probe.Close()
	os.Remove(probe.Name())

	result.Status = statusOK
	result.Message = cfg.Build.OutputDir + " is writable"
	return result
}

func checkPortAvailability(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Port availability",
		Category: "network",
		Details:  map[string]interface{}{"addr": cfg.Addr()},
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Addr())
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("%s is not available: %v", cfg.Addr(), err)
		result.Suggestion = fmt.Sprintf("Use another port: solid serve --port %d", cfg.Server.Port+1)
		return result
	}
	ln.Close()

	result.Status = statusOK
	result.Message = cfg.Addr() + " is available"
	return result
}

func checkEnvironment(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Environment",
		Category: "environment",
		Status:   statusOK,
		Message:  cfg.Server.Environment,
		Details: map[string]interface{}{
			"hot_reload": cfg.Development.HotReload,
			"log_level":  cfg.Log.Level,
		},
	}

	if !cfg.IsProduction() {
		if cfg.Development.HotReload {
			result.Message += ", live reload enabled"
		}
		return result
	}

	if cfg.Development.HotReload {
		result.Status = statusInfo
		result.Message += ", live reload is ignored in production"
	}
	if !strings.HasPrefix(cfg.Site.BaseURL, "https://") {
		result.Status = statusWarning
		result.Message = "Production base URL is not https: " + cfg.Site.BaseURL
		result.Suggestion = "Set site.base_url to the public https URL"
	}
	return result
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case statusOK:
			summary.OK++
		case statusWarning:
			summary.Warnings++
		case statusError:
			summary.Errors++
		case statusInfo:
			summary.Info++
		}
	}
	return summary
}

func outputReport(w io.Writer, report *DoctorReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(report)
	case "text":
		displayReport(w, report)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func displayReport(w io.Writer, report *DoctorReport) {
	for _, result := range report.Results {
		var icon string
		switch result.Status {
		case statusOK:
			icon = color.GreenString("✓")
		case statusWarning:
			icon = color.YellowString("!")
		case statusError:
			icon = color.RedString("✗")
		default:
			icon = color.BlueString("i")
		}

		fmt.Fprintf(w, "%s [%s] %s: %s\n", icon, strings.ToUpper(result.Category), result.Name, result.Message)
		if result.Suggestion != "" {
			fmt.Fprintf(w, "  %s\n", result.Suggestion)
		}
		if doctorVerbose && len(result.Details) > 0 {
			fmt.Fprintf(w, "  details: %v\n", result.Details)
		}
	}

	s := report.Summary
	fmt.Fprintf(w, "\n%d checks: %d ok, %d warnings, %d errors, %d info\n", s.Total, s.OK, s.Warnings, s.Errors, s.Info)
}

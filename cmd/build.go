package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/solidprinciples/solid/internal/audit"
	"github.com/solidprinciples/solid/internal/build"
	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/logging"
	"github.com/solidprinciples/solid/internal/renderer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export the site as static files",
	Long: `Render every page of the site and write it, with the stylesheets,
sitemap.xml and robots.txt, to the output directory. The exported pages are
audited afterwards; the build fails when the audit reports errors.

Examples:
  solid build                     # Export to ./dist
  solid build -o public --clean   # Replace ./public
  solid build --minify            # Minify HTML and CSS
  solid build --no-audit          # Skip the post-build audit`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var (
	buildClean   bool
	buildWorkers int
	buildNoAudit bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Output directory")
	buildCmd.Flags().Bool("minify", false, "Minify HTML and CSS")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Remove the output directory first")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "Concurrent page renders (default: number of CPUs)")
	buildCmd.Flags().BoolVar(&buildNoAudit, "no-audit", false, "Skip auditing the exported pages")

	viper.BindPFlag("build.output_dir", buildCmd.Flags().Lookup("output"))
	viper.BindPFlag("build.minify", buildCmd.Flags().Lookup("minify"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	opts := build.Options{
		OutputDir: cfg.Build.OutputDir,
		Clean:     buildClean,
		Minify:    cfg.Build.Minify,
		Sitemap:   cfg.Build.Sitemap,
		Robots:    cfg.Build.Robots,
		Workers:   buildWorkers,
	}
	return exportSite(cmd.Context(), cfg, opts, !buildNoAudit, cmd.OutOrStdout(), logger)
}

// exportSite exports the configured content and, when auditing, checks the
// result. It writes a summary to out.
func exportSite(ctx context.Context, cfg *config.Config, opts build.Options, runAudit bool, out io.Writer, logger logging.Logger) error {
	store, err := content.Open(cfg.Content.Dir)
	if err != nil {
		return contentErr(err, cfg.Content.Dir)
	}
	pages, err := renderer.NewPageRenderer(store, renderer.ConfigOptions(cfg, time.Now().Year()))
	if err != nil {
		return err
	}

	result, err := build.NewExporter(pages, opts, logger).Export(ctx)
	if result != nil {
		printBuildSummary(out, result)
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if missing := store.Missing(); len(missing) > 0 {
		fmt.Fprintf(out, "%s %d example(s) not yet written\n", color.YellowString("!"), len(missing))
	}

	if !runAudit {
		return nil
	}
	report, err := audit.Dir(ctx, result.OutputDir)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}
	printAuditReport(out, report)
	if report.Failed() {
		return fmt.Errorf("audit found problems in %s", result.OutputDir)
	}
	return nil
}

func printBuildSummary(out io.Writer, result *build.Result) {
	fmt.Fprintf(out, "%s Exported %d pages, %d files (%s) to %s in %s\n",
		color.GreenString("✓"),
		result.Pages,
		len(result.Files),
		formatBytes(result.Bytes),
		result.OutputDir,
		result.Duration.Round(time.Millisecond),
	)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

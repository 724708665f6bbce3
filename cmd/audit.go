package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/solidprinciples/solid/internal/audit"
	"github.com/solidprinciples/solid/internal/errors"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit [dir]",
	Short: "Check exported pages for missing metadata and broken links",
	Long: `Audit the HTML files of an exported site. Missing page metadata,
non-absolute canonical URLs and internal links without a target file are
errors; accessibility issues such as images without alt text are warnings.

The directory defaults to the configured output directory.

Examples:
  solid audit                 # Audit ./dist
  solid audit public          # Audit another directory
  solid audit --format json   # Machine readable findings`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

var auditFormat = newEnum("text", "text", "json")

func init() {
	rootCmd.AddCommand(auditCmd)
	addFormatFlag(auditCmd, auditFormat)
}

func runAudit(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.Build.OutputDir
	}

	report, err := audit.Dir(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("audit %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	if auditFormat.String() == "json" {
		if err := writeAuditJSON(out, report); err != nil {
			return err
		}
	} else {
		printAuditReport(out, report)
	}

	if report.Failed() {
		return fmt.Errorf("audit found problems in %s", dir)
	}
	return nil
}

type auditFinding struct {
	Path     string `json:"path"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type auditOutput struct {
	Dir      string         `json:"dir"`
	Pages    int            `json:"pages"`
	Failed   bool           `json:"failed"`
	Findings []auditFinding `json:"findings"`
}

func writeAuditJSON(out io.Writer, report *audit.Report) error {
	result := auditOutput{
		Dir:      report.Dir,
		Pages:    report.Pages,
		Failed:   report.Failed(),
		Findings: []auditFinding{},
	}
	for _, f := range report.Findings.GetErrors() {
		result.Findings = append(result.Findings, auditFinding{Path: f.Path, Severity: f.Severity.String(), Message: f.Message})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printAuditReport(out io.Writer, report *audit.Report) {
	findings := report.Findings.GetErrors()
	if len(findings) == 0 {
		fmt.Fprintf(out, "%s Audited %d pages, no findings\n", color.GreenString("✓"), report.Pages)
		return
	}

	for _, f := range findings {
		mark := color.YellowString("warning")
		if f.Severity == errors.ErrorSeverityError {
			mark = color.RedString("error")
		}
		fmt.Fprintf(out, "%s %s: %s\n", mark, f.Path, f.Message)
	}
	fmt.Fprintf(out, "Audited %d pages, %d finding(s)\n", report.Pages, len(findings))
}

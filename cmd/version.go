package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/solidprinciples/solid/internal/version"
	"github.com/spf13/cobra"
)

var (
	versionFormat = newEnum("text", "text", "json")
	versionShort  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information: the version, git commit, build time,
Go version and target platform.

Examples:
  solid version                # Show version details
  solid version --short        # Show short version only
  solid version --format json  # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), version.Get(), versionFormat.String(), versionShort)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	addFormatFlag(versionCmd, versionFormat)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func writeVersion(w io.Writer, info version.Info, format string, short bool) error {
	switch {
	case format == "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case short:
		_, err := fmt.Fprintln(w, info.Short())
		return err
	default:
		_, err := fmt.Fprintf(w, "solid %s\n%s\n", info.Short(), info)
		return err
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/registry"
	"github.com/solidprinciples/solid/internal/routes"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List every page of the site",
	Long: `List every page the site serves and exports, with the file it is
exported to and whether its code example has been written.

Content status for example pages:
  complete   both the "without" and the "with" example exist
  partial    only one of them exists
  missing    neither exists; the page shows placeholders

Examples:
  solid routes
  solid routes --content-dir ./content
  solid routes --format json`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

var routesFormat = newEnum("table", "table", "json")

func init() {
	rootCmd.AddCommand(routesCmd)
	addFormatFlag(routesCmd, routesFormat)
}

// routeInfo is one row of the routes listing.
type routeInfo struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	File      string `json:"file"`
	Principle string `json:"principle,omitempty"`
	Language  string `json:"language,omitempty"`
	Content   string `json:"content"`
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := content.Open(cfg.Content.Dir)
	if err != nil {
		return contentErr(err, cfg.Content.Dir)
	}
	return writeRoutes(cmd.OutOrStdout(), listRoutes(store), routesFormat.String())
}

// listRoutes describes every enumerated route against store.
func listRoutes(store *content.Store) []routeInfo {
	cells := make(map[routes.Pair]content.Cell)
	complete := make(map[registry.Principle]int)
	for _, c := range store.Coverage() {
		cells[routes.Pair{Principle: c.Principle, Language: c.Language}] = c
		if c.Complete {
			complete[c.Principle]++
		}
	}
	languages := len(registry.Languages())

	var out []routeInfo
	for _, r := range routes.Enumerate() {
		info := routeInfo{
			Kind:      r.Kind.String(),
			Path:      r.Path(),
			File:      r.File(),
			Principle: string(r.Principle),
			Content:   "-",
		}
		switch r.Kind {
		case routes.KindPrinciple:
			info.Content = fmt.Sprintf("%d/%d complete", complete[r.Principle], languages)
		case routes.KindExample:
			info.Language = string(r.Language)
			info.Content = status(cells[routes.Pair{Principle: r.Principle, Language: r.Language}])
		}
		out = append(out, info)
	}
	return out
}

func status(c content.Cell) string {
	switch {
	case c.Complete:
		return "complete"
	case c.Present:
		return "partial"
	default:
		return "missing"
	}
}

func writeRoutes(w io.Writer, infos []routeInfo, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	t := newTable("KIND", "PATH", "FILE", "CONTENT")
	for _, info := range infos {
		t.addRow(info.Kind, info.Path, info.File, info.Content)
	}
	t.render(w)
	fmt.Fprintf(w, "\n%d routes\n", len(infos))
	return nil
}

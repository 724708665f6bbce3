package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/solidprinciples/solid/internal/errors"
	"github.com/solidprinciples/solid/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the web server for the SOLID principles site.

In development the browser reloads whenever a file below --content-dir
changes. Production mode (--environment production) disables reloading.

Examples:
  solid serve                                # Serve embedded content on localhost:8080
  solid serve -p 3000                        # Serve on another port
  solid serve --content-dir ./content        # Serve and live-reload local content
  solid serve --environment production --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("hot-reload", true, "Reload open pages when content changes")
	serveCmd.Flags().String("environment", "development", "Environment (development, production, test)")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("development.hot_reload", serveCmd.Flags().Lookup("hot-reload"))
	viper.BindPFlag("server.environment", serveCmd.Flags().Lookup("environment"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return contentErr(err, cfg.Content.Dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s\n", cfg.Site.Name, color.CyanString("http://%s", cfg.Addr()))
	if cfg.Content.Dir != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Content: %s\n", cfg.Content.Dir)
	}

	if err := srv.Start(ctx); err != nil {
		return serveErr(err, cfg.Server.Port)
	}
	if ctx.Err() != nil {
		logger.Info(context.Background(), "Server stopped")
	}
	return nil
}

// serveErr adds suggestions when the listener could not bind.
func serveErr(err error, port int) error {
	var opErr *net.OpError
	if stderrors.As(err, &opErr) && opErr.Op == "listen" {
		return errors.NewEnhancedError(fmt.Sprintf("Failed to start server on port %d", port), err,
			errors.ServerStartError(err, port))
	}
	return fmt.Errorf("server error: %w", err)
}

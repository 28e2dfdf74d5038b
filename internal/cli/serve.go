package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/borghese/vitrine/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		port  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Start the JSON HTTP API the site's pages call. Settings in a .env file in the working directory are loaded first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port, watch)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (default from config, 8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "clear the cache when the site directory's data files change")

	return cmd
}

func runServe(cmd *cobra.Command, port string, watch bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if port == "" {
		port = a.cfg.Server.Port
	}
	if watch && a.cfg.Site.Dir == "" {
		return fmt.Errorf("--watch needs a site directory, not a site URL")
	}

	srv := web.NewServer(a.loader, a.prefs, web.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watch {
		go func() {
			if err := a.loader.Watch(ctx, a.cfg.Site.Dir); err != nil {
				slog.Error("watching site data", "error", err)
			}
		}()
	}

	slog.Info("serving site data", "site_url", a.cfg.Site.URL, "site_dir", a.cfg.Site.Dir)
	return srv.ListenAndServe(ctx, net.JoinHostPort("", port))
}

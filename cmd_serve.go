package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"search-launcher/api"
	"search-launcher/tab"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local API and the content-script relay",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		tabs := tab.NewManager(
			tab.WithTimeout(a.cfg.Relay.RequestTimeout),
			tab.WithLogger(a.log.Named("tab")),
		)
		d := a.dispatcher(hostFor(a.cfg.Navigation, tabs, browser.OpenURL))

		srv := &http.Server{
			Addr:              a.cfg.Addr,
			Handler:           api.RegisterRoutes(a.store, d, tabs, a.log.Named("api")),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		a.log.Info("search-launcher listening",
			zap.String("addr", a.cfg.Addr),
			zap.String("navigation", a.cfg.Navigation),
			zap.String("storage", a.cfg.Storage.Backend),
		)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/halfmoss/reelmatch/internal/api"
	"github.com/halfmoss/reelmatch/internal/logging"
	"github.com/halfmoss/reelmatch/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the HTTP API server. With --watch the configured folders are
also monitored for new media files, which are logged as they arrive.

Examples:
  reelmatch serve
  reelmatch serve --addr :9090 --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Close()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if addr == "" {
				addr = cfg.Serve.Addr
			}
			if !watch {
				watch = cfg.Serve.Watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if watch {
				w, err := watcher.New(watcher.HandlerFunc(func(event watcher.FileEvent) error {
					fields := []logging.Field{
						logging.F("type", string(event.Type)),
						logging.F("path", event.Path),
						logging.F("file_type", string(event.FileType)),
					}
					if info, err := os.Stat(event.Path); err == nil {
						fields = append(fields, logging.F("size", info.Size()))
					}
					logger.Info("watch", "media file event", fields...)
					return nil
				}), logger)
				if err != nil {
					return fmt.Errorf("failed to create watcher: %w", err)
				}
				defer w.Close()

				folders := cfg.FolderSet()
				roots := append(append(append([]string(nil), folders.Default...), folders.Source...), folders.Finished...)
				if err := w.Watch(roots); err != nil {
					logger.Warn("watch", "some folders could not be watched", logging.F("error", err))
				}
				go func() {
					if err := w.Run(ctx); err != nil && ctx.Err() == nil {
						logger.Error("watch", "watcher stopped", err)
					}
				}()
			}

			server := api.NewServer(db, cfg, logger)
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe(addr)
			}()

			select {
			case <-ctx.Done():
				logger.Info("api", "shutting down")
				return nil
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Also watch configured folders for new media")

	return cmd
}

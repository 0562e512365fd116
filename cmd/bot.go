package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/exile-tools/poewiki-cli/internal/bot"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Start the Telegram inline bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := initLookup()
		if err != nil {
			return err
		}

		b, err := bot.New(cfg.Telegram, svc)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{
				"status":  "ok",
				"pending": b.Flow().PendingCount(),
			})
		})

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
			Handler: mux,
		}
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down health server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("health server shutdown failed", zap.Error(err))
			}
		}()
		go func() {
			zap.L().Info("health server listening", zap.Int("port", cfg.Health.Port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				zap.L().Error("health server failed", zap.Error(err))
			}
		}()

		if err := b.Run(ctx); err != nil {
			return eris.Wrap(err, "bot run")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

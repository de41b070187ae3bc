package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/ingest-cli/internal/llm"
	"github.com/ledgerline/ingest-cli/internal/ocr"
	"github.com/ledgerline/ingest-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP service",
	Long:  "Hosts the extraction, feedback, and contacts endpoints consumed by the ingestion pipeline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		provider := llm.NewAnthropic(llm.AnthropicConfig{
			Key:       cfg.Anthropic.Key,
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := server.New(server.Config{
			Port:          port,
			RatePerSecond: cfg.Server.RatePerSecond,
			RateBurst:     cfg.Server.RateBurst,
			PDF:           ocr.NewPdfToText(cfg.OCR.PdfToTextPath),
		}, provider, st)

		httpSrv := &http.Server{
			Addr:    srv.Addr(),
			Handler: srv.Handler(),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("server listening", zap.String("addr", httpSrv.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

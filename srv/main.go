package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	storybot "github.com/opd-ai/storybot/src"
	storytls "github.com/opd-ai/storybot/srv/tls"
	"github.com/opd-ai/storybot/srv/ui"
	"github.com/opd-ai/storybot/srv/util"
)

var envFile = flag.String("env", ".env", "optional dotenv file loaded before the environment")

func main() {
	flag.Parse()

	cfg, err := storybot.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gen, err := storybot.NewGenerator(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           ui.NewGeneratorUI(cfg, gen, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("addr", cfg.Addr),
			zap.String("provider", cfg.Provider),
			zap.String("keyMode", string(cfg.KeyMode)),
			zap.String("promptMode", string(cfg.PromptMode)),
			zap.Bool("tls", cfg.TLSEnabled()))

		var err error
		if cfg.TLSEnabled() {
			err = storytls.ListenAndServeTLS(srv, cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"newsquant/internal/config"
	"newsquant/internal/util"
	"newsquant/internal/web"
	"newsquant/pkg/newsquant"
)

func main() {
	// Load config.
	cfgPath := "config/newsquant.yaml"
	if p := os.Getenv("NEWSQUANT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	var out io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		logFile, err := util.OpenLogFile(cfg.Logging.File)
		if err != nil {
			log.Fatalf("opening log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, out)

	gin.SetMode(gin.ReleaseMode)

	client := newsquant.NewClient(cfg.Upstream.BaseURL, newsquant.WithTimeout(cfg.Upstream.Timeout.Std()))
	srv := web.NewServer(client, cfg, logger)

	httpServer := &http.Server{
		Addr:              cfg.Web.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":     httpServer.Addr,
			"upstream": client.BaseURL(),
		}).Info("newsquant server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down newsquant server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

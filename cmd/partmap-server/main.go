package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"partmap/internal/config"
	"partmap/internal/logging"
	"partmap/internal/server"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg)
	must(err)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(server.New(cfg).Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

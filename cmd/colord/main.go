package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"colorcore/go-daemon/internal/cache"
	"colorcore/go-daemon/internal/config"
	"colorcore/go-daemon/internal/controller"
	"colorcore/go-daemon/internal/operations"
	"colorcore/go-daemon/internal/routing"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("colord version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "colord: %v\n", err)
		os.Exit(1)
	}

	registry := operations.NewRegistry()
	controller.Register(registry)

	router := routing.New(cfg, registry, cache.SqliteFactory(cfg.Cache.Path), os.Stdout)
	if err := router.Parse(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "colord: %v\n", err)
		os.Exit(1)
	}
}

// Package main is the entry point for the todopro CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"todopro/internal/backend/todoapi"
	"todopro/internal/cli"
	"todopro/internal/commands"
	"todopro/internal/config"
	"todopro/internal/service"
	"todopro/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config, sess *session.Session, log *zap.Logger) (service.Service, error) {
		return todoapi.New(ctx, cfg, sess, log)
	}
	auth := func(cfg *config.Config, log *zap.Logger) (service.Auth, error) {
		return todoapi.NewAuthClient(cfg.APIURL, nil, log)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory, auth)
	dispatcher.In = os.Stdin

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

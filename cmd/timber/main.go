package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/timber/pkg/interfaces/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx, os.Args[1:], commands.Dependencies{})
	stop()
	os.Exit(code)
}

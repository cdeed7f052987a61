package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.command().ExecuteContext(ctx); err != nil {
		app.log().Error("graphqa failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flame/cli/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp()
	err := cli.NewRootCommand(app).ExecuteContext(ctx)
	app.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

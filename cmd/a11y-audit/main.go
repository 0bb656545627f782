package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bennypowers.dev/a11yaudit/internal/cmd"
	"bennypowers.dev/a11yaudit/internal/parser"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.NewRootCommand().ExecuteContext(ctx)
	stop()
	parser.ClosePools()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

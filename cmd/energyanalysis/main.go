package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// day boundaries use Europe/Brussels even on hosts without zoneinfo
	_ "time/tzdata"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

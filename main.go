package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"barrierbet/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

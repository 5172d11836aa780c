package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/yard/cli"
	"github.com/ardnew/yard/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		)
		cli.Report(os.Stderr, err)
		os.Exit(1)
	}
}

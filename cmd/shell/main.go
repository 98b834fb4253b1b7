// Package main starts the session and notification shell process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	shellcmd "github.com/louisbranch/repetigone/internal/cmd/shell"
	"github.com/louisbranch/repetigone/internal/platform/config"
)

func main() {
	cfg, err := shellcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[SHELL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shellcmd.Run(ctx, cfg); err != nil {
		config.Exitf("run shell: %v", err)
	}
}

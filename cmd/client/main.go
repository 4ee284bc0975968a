// Package main is an interactive terminal client for the local basetutor API.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/basetutor/internal/client"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		baseURL string
		showVer bool
	)
	flag.StringVar(&baseURL, "url", "http://127.0.0.1:8080", "local API base URL")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("basetutor client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Type 'help' for a list of commands.")
	client.NewShell(client.New(baseURL), os.Stdin, os.Stdout).Run(ctx)
}

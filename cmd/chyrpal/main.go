package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chyrpal/chyrpal/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	server := flag.String("server", "", "API base URL, e.g. https://blog.example.com/api (optional)")
	refreshSeconds := flag.Int("refresh", 0, "session refresh interval in seconds (optional)")
	debugLog := flag.String("debug-log", "", "write debug logs to this file (optional)")
	flag.Parse()

	// Stdout belongs to the TUI; logs either go to a file or nowhere.
	if *debugLog != "" {
		file, err := tea.LogToFile(*debugLog, "chyrpal")
		if err != nil {
			fmt.Fprintf(os.Stderr, "chyrpal: open debug log: %v\n", err)
			return 1
		}
		defer file.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		Server:     *server,
	}
	if refresh := *refreshSeconds; refresh > 0 {
		opts.RefreshEvery = refresh
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "chyrpal: %v\n", err)
		return 1
	}
	return 0
}

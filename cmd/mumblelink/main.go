// Command mumblelink inspects and drives the Mumble link shared memory
// segment from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/srediag/mumble-link/internal/logging"
)

type command struct {
	run  func(ctx context.Context, cfg *Config, out io.Writer) error
	help string
}

var commands = map[string]command{
	"status":  {runStatus, "report whether the link is closed, in use by another application, or free"},
	"dump":    {runDump, "print the record currently in the segment without writing"},
	"publish": {runPublish, "publish a fixed position every frame through a shared link"},
	"wait":    {runWait, "wait until Mumble creates the segment"},
	"doctor":  {runDoctor, "diagnose why the segment cannot be opened"},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: mumblelink <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(w, "run 'mumblelink <command> --help' for flags")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage(os.Stderr)
		os.Exit(2)
	}
	cfg, err := loadConfig(os.Args[1], os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "mumblelink:", err)
		os.Exit(2)
	}
	logging.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "mumblelink:", err)
		stop()
		os.Exit(1)
	}
}

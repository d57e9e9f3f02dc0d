package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-sm83/sm83"
	"github.com/valerio/go-sm83/sm83/backend"
	"github.com/valerio/go-sm83/sm83/backend/headless"
	"github.com/valerio/go-sm83/sm83/backend/remote"
	"github.com/valerio/go-sm83/sm83/backend/terminal"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running machine", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sm83"
	app.Description = "An SM83 CPU core with terminal, headless and remote debuggers"
	app.Usage = "sm83 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file (.gb, .bin, .gz, .zip, .xz or .7z)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without an interface until --steps instructions or a fault",
		},
		cli.IntFlag{
			Name:  "steps",
			Usage: "Number of instructions to run in headless mode (0 = until fault)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "batch",
			Usage: "Instructions executed between two backend updates while running",
			Value: 1000,
		},
		cli.BoolFlag{
			Name:  "paused",
			Usage: "Start paused, waiting for a step or run action",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every instruction before it executes (debug level)",
		},
		cli.StringFlag{
			Name:  "listen",
			Usage: "Serve the remote debugger on this address, e.g. localhost:8090",
		},
		cli.BoolFlag{
			Name:  "read-only-rom",
			Usage: "Fault on writes into the ROM window",
		},
		cli.StringFlag{
			Name:  "pc",
			Usage: "Override the start address, e.g. 0x0150",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = runMachine
	return app
}

func runMachine(c *cli.Context) error {
	level, err := parseLogLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	startPC, err := parsePC(c.String("pc"))
	if err != nil {
		return err
	}

	m, err := sm83.NewWithFile(romPath, sm83.Config{
		Trace:       c.Bool("trace"),
		ReadOnlyROM: c.Bool("read-only-rom"),
		StartPC:     startPC,
	})
	if err != nil {
		return err
	}

	steps := c.Int("steps")
	if steps < 0 {
		return errors.New("--steps must not be negative")
	}

	var b backend.Backend
	switch {
	case c.Bool("headless"):
		b = headless.New(uint64(steps))
	case c.String("listen") != "":
		b = remote.New(c.String("listen"))
	default:
		b = terminal.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = backend.Loop(ctx, m, b, backend.Config{
		Title:       romPath,
		Batch:       c.Int("batch"),
		StartPaused: c.Bool("paused"),
	})
	if errors.Is(err, context.Canceled) {
		slog.Info("Interrupted", "steps", m.Steps())
		return nil
	}
	return err
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}
	return level, nil
}

// parsePC accepts decimal, 0x-prefixed hex and 0o/0b forms.
func parsePC(s string) (uint16, error) {
	if s == "" {
		return 0, nil
	}
	pc, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid --pc %q: %w", s, err)
	}
	return uint16(pc), nil
}

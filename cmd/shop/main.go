package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Makepad-fr/shop/internal/cli"
	"github.com/Makepad-fr/shop/internal/config"
	"github.com/Makepad-fr/shop/internal/httpapi"
	"github.com/Makepad-fr/shop/internal/logger"
	"github.com/Makepad-fr/shop/internal/shoplist"
	"github.com/Makepad-fr/shop/internal/store/backend"
	"github.com/Makepad-fr/shop/internal/tui"
	"github.com/Makepad-fr/shop/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}

	// Root flags (apply to every subcommand) override the environment.
	groupPending := flag.Bool("group", false, "group output by pending/done")
	storeName := flag.String("store", cfg.Store, "storage backend")
	theme := flag.String("theme", cfg.Theme, "color theme: classic, neon or mono")
	flag.Parse()
	cfg.Store = *storeName
	cfg.Theme = *theme
	if err := cfg.Validate(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format := logger.Text
	if args[0] == "serve" {
		format = logger.JSON
	}
	log := logger.New(os.Stderr, cfg.LogLevel, format)

	var closer io.Closer
	defer func() {
		if closer != nil {
			if err := closer.Close(); err != nil {
				log.Warn("close store", "error", err)
			}
		}
	}()

	return cli.Run(ctx, args, cli.Options{
		Group:  *groupPending,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Open: func(ctx context.Context) (*shoplist.List, error) {
			s, c, err := backend.Open(ctx, cfg)
			if err != nil {
				return nil, err
			}
			closer = c
			return shoplist.Open(ctx, s, shoplist.WithLogger(log.With("store", cfg.Store)))
		},
		Config:      cfg,
		Interactive: tui.Run,
		Serve: func(ctx context.Context, l *shoplist.List) error {
			h := httpapi.NewHandler(l, httpapi.Config{
				Logger:          log,
				APIToken:        cfg.APIToken,
				AllowedOrigins:  splitOrigins(cfg.CORSAllowedOrigins),
				RateLimitPerMin: cfg.RateLimitPerMin,
			})
			return httpapi.Serve(ctx, cfg.HTTPAddr, h, log)
		},
	})
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"newsquant/internal/config"
	"newsquant/internal/scan"
	"newsquant/internal/util"
	"newsquant/internal/view"
	"newsquant/pkg/newsquant"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: newsquant-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version    Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  scan       Run one scan and print the results\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("newsquant-cli %s\n", version)

	case "scan":
		if err := runScan(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "scan: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func runScan(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	cfgPath := fs.String("config", configPath(), "path to the YAML config file")
	period := fs.String("period", "", "scan period (defaults to scan.default_period)")
	industry := fs.String("industry", "", "industry filter (omit for all industries)")
	expand := fs.Bool("expand", false, "show every card expanded")
	asHTML := fs.Bool("html", false, "print the HTML fragment instead of text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *period == "" {
		*period = cfg.Scan.DefaultPeriod
	}

	logger := util.NewLogger(cfg.Logging.Level, "text", os.Stderr)
	client := newsquant.NewClient(cfg.Upstream.BaseURL, newsquant.WithTimeout(cfg.Upstream.Timeout.Std()))

	region := view.NewBuffer()
	opts := []scan.Option{
		scan.WithLogger(logger),
		scan.WithPeriods(config.Values(cfg.Scan.Periods)...),
		scan.WithAllIndustries(cfg.Scan.AllIndustries),
	}
	if len(cfg.Scan.Industries) > 0 {
		opts = append(opts, scan.WithIndustries(config.Values(cfg.Scan.Industries)...))
	}
	ctrl, err := scan.New(client, scan.Handles{
		Period:   scan.Fixed(*period),
		Industry: scan.Fixed(*industry),
		Display:  region,
	}, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Scan failures are already written to the region; print it either way.
	scanErr := ctrl.Trigger(ctx)
	if errors.Is(scanErr, scan.ErrUnknownPeriod) || errors.Is(scanErr, scan.ErrUnknownIndustry) {
		return scanErr
	}
	if l := region.List(); l != nil && *expand {
		l.ExpandAll()
	}

	if *asHTML {
		err = region.WriteHTML(out)
	} else {
		err = region.WriteText(out)
	}
	if err != nil {
		return err
	}
	return scanErr
}

func configPath() string {
	if p := os.Getenv("NEWSQUANT_CONFIG"); p != "" {
		return p
	}
	return "config/newsquant.yaml"
}

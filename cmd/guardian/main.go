package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"asset-guardian/internal/logger"
	"asset-guardian/internal/snapshot"
	"asset-guardian/internal/trace"
	"asset-guardian/internal/types"
)

const usage = `usage: guardian [-config config.yaml] <command> [args]

commands:
  analyze <ticker>   print the three-horizon evidence as JSON
  report <ticker>    analyze, then print today's research report (cached per day)
  watch              run reports for watch.symbols on watch.schedule
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		os.Exit(1)
	}

	cmd := args[0]
	switch cmd {
	case "analyze", "report":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
	case "watch":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}

	a, err := buildApp(ctx, cfg, cmd != "analyze")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	switch cmd {
	case "analyze":
		err = runAnalyze(ctx, a, args[1])
	case "report":
		err = runReport(ctx, a, args[1])
	case "watch":
		err = runWatch(ctx, a)
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Command failed", err, "command", cmd)
		a.Close(context.Background())
		os.Exit(1)
	}
}

func runAnalyze(ctx context.Context, a *app, ticker string) error {
	res, err := a.analyzer.Analyze(ctx, ticker)
	if err != nil {
		return err
	}
	if err := a.runs.Append(res, ""); err != nil {
		logger.Warn(ctx, "Failed to append analysis log", "error", err)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runReport(ctx context.Context, a *app, ticker string) error {
	if a.reports == nil {
		return fmt.Errorf("report generation is disabled (report.enabled=false)")
	}
	if rep, ok := a.reports.Today(ctx, snapshot.NormalizeTicker(ticker)); ok {
		printReport(rep, "cached")
		return nil
	}

	res, err := a.analyzer.Analyze(ctx, ticker)
	if err != nil {
		return err
	}
	rep, cached, err := a.reports.GetOrCreate(ctx, res)
	if err != nil {
		return err
	}
	if err := a.runs.Append(res, rep.Provider); err != nil {
		logger.Warn(ctx, "Failed to append analysis log", "error", err)
	}

	source := "generated"
	if cached {
		source = "cached"
	}
	printReport(rep, source)
	return nil
}

func printReport(rep *types.Report, source string) {
	fmt.Printf("# %s research report (%s, %s via %s)\n\n%s\n", rep.Symbol, rep.Date, source, rep.Provider, rep.Content)
}

func runWatch(ctx context.Context, a *app) error {
	symbols := a.cfg.Watch.Symbols
	if len(symbols) == 0 {
		return fmt.Errorf("watch.symbols is empty")
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	housekeeping(ctx, a)

	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	_, err = c.AddFunc(a.cfg.Watch.Schedule, func() {
		for _, sym := range symbols {
			if ctx.Err() != nil {
				return
			}
			if err := runReport(ctx, a, sym); err != nil {
				logger.ErrorWithErr(ctx, "Scheduled report failed", err, "symbol", sym)
			}
		}
		housekeeping(ctx, a)
	})
	if err != nil {
		return fmt.Errorf("invalid watch.schedule %q: %w", a.cfg.Watch.Schedule, err)
	}

	c.Start()
	logger.Info(ctx, "Watch started", "schedule", a.cfg.Watch.Schedule, "symbols", symbols, "timezone", a.cfg.Timezone)
	<-ctx.Done()
	logger.Info(ctx, "Shutting down...")
	<-c.Stop().Done()
	return nil
}

// housekeeping gzips old analysis logs and drops expired feed responses.
func housekeeping(ctx context.Context, a *app) {
	if err := a.runs.CompressOlder(a.cfg.AnalysisLog.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
	if a.feeds != nil {
		if err := a.feeds.CleanupExpired(); err != nil {
			logger.Warn(ctx, "Failed to clean feed cache", "error", err)
		}
	}
}

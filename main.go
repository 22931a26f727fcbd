package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"newscr/config"
	"newscr/db"
	"newscr/log"
	"newscr/models"
	"newscr/oops"
	"newscr/scraper"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const dateFormat = "2006-01-02"

func main() {
	rootCmd := &cobra.Command{
		Use:           "newscr",
		Short:         "Scrapes Costa Rican news sites into a Postgres articles table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newScrapeCmd())
	rootCmd.AddCommand(db.DbCmd)

	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted")
		os.Exit(130)
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}

func newScrapeCmd() *cobra.Command {
	var siteName string
	var dateStr string
	var startDateStr string
	var endDateStr string
	var limit int
	var dryRun bool

	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape one date or a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := resolveDates(dateStr, startDateStr, endDateStr)
			if err != nil {
				return err
			}
			return runScrape(cmd.Context(), siteName, start, end, limit, dryRun)
		},
	}

	scrapeCmd.Flags().StringVar(&siteName, "site", "crhoy", "site profile (crhoy, diarioextra)")
	scrapeCmd.Flags().StringVar(&dateStr, "date", "", "single date (YYYY-MM-DD)")
	scrapeCmd.Flags().StringVar(&startDateStr, "start-date", "", "range start (YYYY-MM-DD)")
	scrapeCmd.Flags().StringVar(&endDateStr, "end-date", "", "range end (YYYY-MM-DD)")
	scrapeCmd.Flags().IntVar(&limit, "limit", 10, "max articles per day, 0 or negative for unlimited")
	scrapeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract without persisting, print records as JSON")

	return scrapeCmd
}

func resolveDates(dateStr string, startDateStr string, endDateStr string) (time.Time, time.Time, error) {
	var zero time.Time
	switch {
	case dateStr != "" && (startDateStr != "" || endDateStr != ""):
		return zero, zero, oops.New("--date can't be combined with --start-date/--end-date")
	case dateStr != "":
		date, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			return zero, zero, oops.Newf("invalid --date %q, want YYYY-MM-DD", dateStr)
		}
		return date, date, nil
	case startDateStr != "" && endDateStr != "":
		start, err := time.Parse(dateFormat, startDateStr)
		if err != nil {
			return zero, zero, oops.Newf("invalid --start-date %q, want YYYY-MM-DD", startDateStr)
		}
		end, err := time.Parse(dateFormat, endDateStr)
		if err != nil {
			return zero, zero, oops.Newf("invalid --end-date %q, want YYYY-MM-DD", endDateStr)
		}
		if end.Before(start) {
			return zero, zero, oops.New("--end-date is before --start-date")
		}
		return start, end, nil
	case startDateStr != "":
		return zero, zero, oops.New("--start-date requires --end-date")
	default:
		return zero, zero, oops.New("pass --date or --start-date/--end-date")
	}
}

func runScrape(
	parentCtx context.Context, siteName string, start time.Time, end time.Time,
	limit int, dryRun bool,
) error {
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt)
	defer stop()

	site, err := scraper.SiteByName(siteName)
	if err != nil {
		return err
	}

	runId := uuid.NewString()[:8]
	runDir, err := log.OpenRunDir(config.Cfg.LogsDir, runId)
	if err != nil {
		return err
	}
	defer runDir.Close()

	logger := &scraper.ZeroLogger{}
	logger.Info("Run %s: site=%s range=%s..%s limit=%d dryRun=%v",
		runId, site.Name, start.Format(dateFormat), end.Format(dateFormat), limit, dryRun)

	cfg := config.Cfg.Scraper
	retry := scraper.RetryPolicyFromConfig(cfg.Retry)
	httpClient := scraper.NewHttpClient(ctx, "https://"+site.Domain+"/")
	resolver := site.NewResolver(httpClient, retry)

	var gate scraper.PersistenceGate
	if !dryRun {
		pool, err := db.Connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("Database connection established")
		gate = models.NewArticleGate(ctx, pool, retry, logger)
	}

	sessions := scraper.NewSessionManager(cfg, func() (scraper.Session, error) {
		return scraper.NewBrowserSession(cfg, logger)
	}, logger)
	defer sessions.Quit()

	pipeline := scraper.NewPipeline(site, sessions, cfg, logger)
	orchestrator := scraper.NewOrchestrator(site, resolver, pipeline, sessions, gate, cfg, logger)

	stats, articles, runErr := orchestrator.Run(ctx, start, end, limit)

	summary := stats.Summary()
	fmt.Println(summary)
	if err := runDir.WriteSummary(summary); err != nil {
		logger.Warn("Couldn't write summary file: %v", err)
	}

	if dryRun && len(articles) > 0 {
		encoded, err := json.MarshalIndent(articles, "", "  ")
		if err != nil {
			return oops.Wrap(err)
		}
		fmt.Println(string(encoded))
	}

	return runErr
}

package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"newscr/config"
)

// DaySummary is the per-date accounting the orchestrator keeps. It only
// ever lives in run stats and logs.
type DaySummary struct {
	Date       time.Time
	UrlsFound  int
	Scraped    int
	Saved      int
	Failed     int
	Duplicates int
	Invalid    int
	Succeeded  bool
}

type RunStats struct {
	StartedAt time.Time
	Days      []DaySummary
}

func (s *RunStats) Totals() DaySummary {
	var totals DaySummary
	totals.Succeeded = true
	for _, day := range s.Days {
		totals.UrlsFound += day.UrlsFound
		totals.Scraped += day.Scraped
		totals.Saved += day.Saved
		totals.Failed += day.Failed
		totals.Duplicates += day.Duplicates
		totals.Invalid += day.Invalid
		if !day.Succeeded {
			totals.Succeeded = false
		}
	}
	return totals
}

// Summary renders the final run report, the authoritative success signal.
func (s *RunStats) Summary() string {
	totals := s.Totals()
	var b strings.Builder
	fmt.Fprintf(&b, "Run started %s, took %v\n",
		s.StartedAt.Format(time.RFC3339), time.Since(s.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "Days processed: %d\n", len(s.Days))
	fmt.Fprintf(&b, "Found: %d  Scraped: %d  Saved: %d  Failed: %d  Duplicates: %d  Invalid: %d\n",
		totals.UrlsFound, totals.Scraped, totals.Saved, totals.Failed,
		totals.Duplicates, totals.Invalid)
	for _, day := range s.Days {
		status := "ok"
		if !day.Succeeded {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "%s [%s] found=%d scraped=%d saved=%d failed=%d duplicates=%d invalid=%d\n",
			day.Date.Format("2006-01-02"), status, day.UrlsFound, day.Scraped,
			day.Saved, day.Failed, day.Duplicates, day.Invalid)
	}
	return b.String()
}

// Orchestrator walks a date range, resolves the day's URLs and drives each
// one through the pipeline, strictly one article in flight at a time.
type Orchestrator struct {
	Site     *SiteProfile
	Resolver SitemapResolver
	Pipeline *Pipeline
	Sessions *SessionManager
	Gate     PersistenceGate // nil skips persistence (dry runs)
	// RotateEveryDays is the day-level preventive rotation cadence; within
	// a day the health manager rotates on its own article counter.
	RotateEveryDays int
	Politeness      config.Politeness
	BlockedCooldown time.Duration
	Logger          Logger

	sleep     func(time.Duration)
	randFloat func() float64

	requestCount int
	failureCount int
}

func NewOrchestrator(
	site *SiteProfile, resolver SitemapResolver, pipeline *Pipeline,
	sessions *SessionManager, gate PersistenceGate, cfg config.ScraperConfig, logger Logger,
) *Orchestrator {
	return &Orchestrator{
		Site:            site,
		Resolver:        resolver,
		Pipeline:        pipeline,
		Sessions:        sessions,
		Gate:            gate,
		RotateEveryDays: cfg.RotateEveryDays,
		Politeness:      cfg.Politeness,
		BlockedCooldown: cfg.BlockedCooldown.Std(),
		Logger:          logger,
		sleep:           time.Sleep,
		randFloat:       rand.Float64,
		requestCount:    0,
		failureCount:    0,
	}
}

// Run processes every calendar day from start to end inclusive, at most
// limit articles per day (limit <= 0 means unlimited). Day-level failures
// are logged and the range continues; only context cancellation stops it.
func (o *Orchestrator) Run(
	ctx context.Context, start time.Time, end time.Time, limit int,
) (*RunStats, []*Article, error) {
	stats := &RunStats{StartedAt: time.Now().UTC(), Days: nil}
	var articles []*Article

	dayIndex := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return stats, articles, err
		}
		dayIndex++
		if o.RotateEveryDays > 0 && dayIndex > 1 && (dayIndex-1)%o.RotateEveryDays == 0 {
			o.Logger.Info("Preventive session rotation at day boundary")
			o.Sessions.ForceRotate()
		}

		summary, dayArticles := o.runDay(ctx, day, limit)
		stats.Days = append(stats.Days, summary)
		articles = append(articles, dayArticles...)
		o.Logger.Info("Day %s done: found=%d scraped=%d saved=%d failed=%d duplicates=%d invalid=%d",
			day.Format("2006-01-02"), summary.UrlsFound, summary.Scraped, summary.Saved,
			summary.Failed, summary.Duplicates, summary.Invalid)

		if ctx.Err() != nil {
			return stats, articles, ctx.Err()
		}
		if !day.Equal(end) {
			o.sleep(2 * time.Second)
		}
	}

	return stats, articles, nil
}

func (o *Orchestrator) runDay(ctx context.Context, day time.Time, limit int) (DaySummary, []*Article) {
	summary := DaySummary{
		Date: day, UrlsFound: 0, Scraped: 0, Saved: 0, Failed: 0,
		Duplicates: 0, Invalid: 0, Succeeded: true,
	}

	entries, err := o.Resolver.UrlsForDay(day)
	if err != nil {
		// no URLs for this day, the range goes on
		o.Logger.Error("Sitemap resolution failed for %s: %v", day.Format("2006-01-02"), err)
		summary.Succeeded = false
		return summary, nil
	}
	summary.UrlsFound = len(entries)
	o.Logger.Info("Found %d URLs for %s", len(entries), day.Format("2006-01-02"))

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
		o.Logger.Info("Limiting to first %d", limit)
	}

	var articles []*Article
	for i, entry := range entries {
		if ctx.Err() != nil {
			return summary, articles
		}
		o.Logger.Info("Processing %d/%d: %s", i+1, len(entries), entry.Url)

		article, skip, err := o.Pipeline.ScrapeArticle(entry.Url)
		o.requestCount++
		switch {
		case err != nil:
			// Session recreation is broken; abandon the day.
			o.Logger.Error("Abandoning %s: %v", day.Format("2006-01-02"), err)
			summary.Succeeded = false
			return summary, articles
		case skip == SkipBlocked:
			o.failureCount++
			summary.Failed++
			o.Logger.Warn("Cooling down %v after blocking", o.BlockedCooldown)
			o.sleep(o.BlockedCooldown)
		case skip == SkipBodyTooShort:
			summary.Invalid++
		case skip != SkipNone:
			o.failureCount++
			summary.Failed++
		default:
			summary.Scraped++
			articles = append(articles, article)
			o.persist(article, &summary)
		}

		if i < len(entries)-1 {
			o.politenessDelay(i + 1)
		}
	}

	return summary, articles
}

func (o *Orchestrator) persist(article *Article, summary *DaySummary) {
	if o.Gate == nil {
		return
	}
	status, err := o.Gate.Save(article)
	switch status {
	case SaveSaved:
		summary.Saved++
		o.Logger.Info("Saved %s", article.Url)
	case SaveDuplicate:
		summary.Duplicates++
		o.Logger.Info("Skipping duplicate %s", article.Url)
	case SaveFailed:
		summary.Failed++
		o.Logger.Error("Save failed for %s: %v", article.Url, err)
	}
}

// politenessDelay sleeps a randomized interval between articles, stretched
// while failures pile up, with extended breaks on batch boundaries.
func (o *Orchestrator) politenessDelay(processed int) {
	p := o.Politeness

	minDelay, maxDelay := p.MinDelay.Std(), p.MaxDelay.Std()
	if o.emergencyMode() {
		minDelay, maxDelay = p.EmergencyMinDelay.Std(), p.EmergencyMaxDelay.Std()
	}
	delay := randomBetween(o.randFloat, minDelay, maxDelay)
	if failures := o.Sessions.ConsecutiveFailures(); failures > 0 {
		delay *= time.Duration(1 + failures)
	}
	o.sleep(delay)

	if p.LongBreakEvery > 0 && processed%p.LongBreakEvery == 0 {
		pause := randomBetween(o.randFloat, p.LongBreakMin.Std(), p.LongBreakMax.Std())
		o.Logger.Info("Long break for %v after %d articles", pause.Round(time.Second), processed)
		o.sleep(pause)
	} else if p.BatchBreakEvery > 0 && processed%p.BatchBreakEvery == 0 {
		pause := randomBetween(o.randFloat, p.BatchBreakMin.Std(), p.BatchBreakMax.Std())
		o.Logger.Info("Batch break for %v after %d articles", pause.Round(time.Second), processed)
		o.sleep(pause)
	}
}

func (o *Orchestrator) emergencyMode() bool {
	if o.requestCount < o.Politeness.EmergencyMinRequests {
		return false
	}
	failureRate := float64(o.failureCount) / float64(o.requestCount)
	return failureRate > o.Politeness.EmergencyFailureRate
}

func randomBetween(randFloat func() float64, low time.Duration, high time.Duration) time.Duration {
	if high <= low {
		return low
	}
	return low + time.Duration(randFloat()*float64(high-low))
}

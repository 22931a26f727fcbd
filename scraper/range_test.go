//go:build testing

package scraper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"newscr/config"
	"newscr/oops"

	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	entriesByDay map[string][]SitemapEntry
	errsByDay    map[string]error
	calls        []string
}

func (r *fakeResolver) UrlsForDay(day time.Time) ([]SitemapEntry, error) {
	key := day.Format("2006-01-02")
	r.calls = append(r.calls, key)
	if err := r.errsByDay[key]; err != nil {
		return nil, err
	}
	return r.entriesByDay[key], nil
}

type fakeGate struct {
	statusByUrl map[string]SaveStatus
	saved       []string
}

func (g *fakeGate) Save(article *Article) (SaveStatus, error) {
	g.saved = append(g.saved, article.Url)
	if status, ok := g.statusByUrl[article.Url]; ok {
		if status == SaveFailed {
			return SaveFailed, oops.New("insert failed")
		}
		return status, nil
	}
	return SaveSaved, nil
}

func dayEntries(urls ...string) []SitemapEntry {
	var entries []SitemapEntry
	for _, u := range urls {
		entries = append(entries, SitemapEntry{Url: u, MaybeLastMod: nil})
	}
	return entries
}

func newTestOrchestrator(
	resolver SitemapResolver, gate PersistenceGate, factory SessionFactory,
) (*Orchestrator, *SessionManager) {
	site := crhoyProfile()
	logger := NewDummyLogger()
	manager := NewSessionManager(config.Cfg.Scraper, factory, logger)
	manager.sleep = func(time.Duration) {}
	pipeline := NewPipeline(site, manager, config.Cfg.Scraper, logger)
	orchestrator := NewOrchestrator(site, resolver, pipeline, manager, gate, config.Cfg.Scraper, logger)
	orchestrator.sleep = func(time.Duration) {}
	orchestrator.randFloat = func() float64 { return 0.5 }
	return orchestrator, manager
}

func articleUrls(n int) []string {
	var urls []string
	for i := 1; i <= n; i++ {
		urls = append(urls, fmt.Sprintf("https://www.crhoy.com/nacionales/nota-%d/", i))
	}
	return urls
}

func sessionWithArticles(urls []string) *fakeSession {
	pages := map[string]Page{}
	for _, u := range urls {
		pages[u] = mustStaticPage(u, 200, crhoyArticleHtml())
	}
	return &fakeSession{pages: pages}
}

func TestRunRespectsDayLimit(t *testing.T) {
	urls := articleUrls(5)
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	resolver := &fakeResolver{
		entriesByDay: map[string][]SitemapEntry{"2024-05-24": dayEntries(urls...)},
	}
	gate := &fakeGate{statusByUrl: nil}
	session := sessionWithArticles(urls)
	orchestrator, _ := newTestOrchestrator(resolver, gate, func() (Session, error) {
		return session, nil
	})

	stats, articles, err := orchestrator.Run(context.Background(), day, day, 3)
	require.NoError(t, err)
	require.Len(t, stats.Days, 1)

	summary := stats.Days[0]
	require.True(t, summary.Succeeded)
	require.Equal(t, 5, summary.UrlsFound)
	require.Equal(t, 3, summary.Scraped)
	require.Equal(t, 3, summary.Saved)
	require.Len(t, articles, 3)
	require.Equal(t, urls[:3], gate.saved)
}

func TestRunCountsDuplicatesAndSaveFailures(t *testing.T) {
	urls := articleUrls(3)
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	resolver := &fakeResolver{
		entriesByDay: map[string][]SitemapEntry{"2024-05-24": dayEntries(urls...)},
	}
	gate := &fakeGate{statusByUrl: map[string]SaveStatus{
		urls[1]: SaveDuplicate,
		urls[2]: SaveFailed,
	}}
	session := sessionWithArticles(urls)
	orchestrator, _ := newTestOrchestrator(resolver, gate, func() (Session, error) {
		return session, nil
	})

	stats, _, err := orchestrator.Run(context.Background(), day, day, 0)
	require.NoError(t, err)

	summary := stats.Days[0]
	require.Equal(t, 3, summary.Scraped)
	require.Equal(t, 1, summary.Saved)
	require.Equal(t, 1, summary.Duplicates)
	require.Equal(t, 1, summary.Failed)
}

func TestRunResolverFailureIsNotFatal(t *testing.T) {
	urls := articleUrls(1)
	start := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	resolver := &fakeResolver{
		entriesByDay: map[string][]SitemapEntry{"2024-05-25": dayEntries(urls...)},
		errsByDay:    map[string]error{"2024-05-24": oops.New("sitemap fetch returned 500")},
	}
	gate := &fakeGate{statusByUrl: nil}
	session := sessionWithArticles(urls)
	orchestrator, _ := newTestOrchestrator(resolver, gate, func() (Session, error) {
		return session, nil
	})

	stats, articles, err := orchestrator.Run(context.Background(), start, end, 0)
	require.NoError(t, err)
	require.Len(t, stats.Days, 2)
	require.False(t, stats.Days[0].Succeeded)
	require.True(t, stats.Days[1].Succeeded)
	require.Equal(t, 1, stats.Days[1].Saved)
	require.Len(t, articles, 1)
	require.Equal(t, []string{"2024-05-24", "2024-05-25"}, resolver.calls)
	require.False(t, stats.Totals().Succeeded)
}

func TestRunRotatesSessionAtDayBoundaries(t *testing.T) {
	urls := articleUrls(1)
	start := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	entries := map[string][]SitemapEntry{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		entries[d.Format("2006-01-02")] = dayEntries(urls...)
	}
	resolver := &fakeResolver{entriesByDay: entries}
	factoryCalls := 0
	orchestrator, _ := newTestOrchestrator(resolver, nil, func() (Session, error) {
		factoryCalls++
		return sessionWithArticles(urls), nil
	})

	_, _, err := orchestrator.Run(context.Background(), start, end, 0)
	require.NoError(t, err)
	// one session for days 1-2, a fresh one at the day-3 boundary
	require.Equal(t, 2, factoryCalls)
}

func TestRunRotationCadenceIsConfigurable(t *testing.T) {
	urls := articleUrls(1)
	start := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	entries := map[string][]SitemapEntry{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		entries[d.Format("2006-01-02")] = dayEntries(urls...)
	}
	resolver := &fakeResolver{entriesByDay: entries}
	factoryCalls := 0
	orchestrator, _ := newTestOrchestrator(resolver, nil, func() (Session, error) {
		factoryCalls++
		return sessionWithArticles(urls), nil
	})
	orchestrator.RotateEveryDays = 1

	_, _, err := orchestrator.Run(context.Background(), start, end, 0)
	require.NoError(t, err)
	require.Equal(t, 3, factoryCalls)
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	resolver := &fakeResolver{entriesByDay: nil}
	orchestrator, _ := newTestOrchestrator(resolver, nil, func() (Session, error) {
		return &fakeSession{pages: nil}, nil
	})

	stats, articles, err := orchestrator.Run(ctx, day, day.AddDate(0, 0, 5), 0)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, stats.Days)
	require.Empty(t, articles)
	require.Empty(t, resolver.calls)
}

func TestRunCoolsDownAfterBlocking(t *testing.T) {
	urls := articleUrls(2)
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	resolver := &fakeResolver{
		entriesByDay: map[string][]SitemapEntry{"2024-05-24": dayEntries(urls...)},
	}
	session := &fakeSession{pages: map[string]Page{
		urls[0]: mustStaticPage(urls[0], 429, "<html><body></body></html>"),
		urls[1]: mustStaticPage(urls[1], 200, crhoyArticleHtml()),
	}}
	orchestrator, manager := newTestOrchestrator(resolver, nil, func() (Session, error) {
		return session, nil
	})
	var sleeps []time.Duration
	orchestrator.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	stats, _, err := orchestrator.Run(context.Background(), day, day, 0)
	require.NoError(t, err)

	summary := stats.Days[0]
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Scraped)
	require.Contains(t, sleeps, config.Cfg.Scraper.BlockedCooldown.Std())
	require.Equal(t, 1, manager.BlockingIncidents())
}

func TestRunAbandonsDayWhenSessionWontRecreate(t *testing.T) {
	urls := articleUrls(2)
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	resolver := &fakeResolver{
		entriesByDay: map[string][]SitemapEntry{"2024-05-24": dayEntries(urls...)},
	}
	orchestrator, _ := newTestOrchestrator(resolver, nil, func() (Session, error) {
		return nil, oops.New("browser won't launch")
	})

	stats, articles, err := orchestrator.Run(context.Background(), day, day, 0)
	require.NoError(t, err)
	require.Len(t, stats.Days, 1)
	require.False(t, stats.Days[0].Succeeded)
	require.Empty(t, articles)
}

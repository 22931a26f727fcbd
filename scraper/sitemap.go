package scraper

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"newscr/oops"

	"github.com/antchfx/xmlquery"
)

// SitemapEntry is one candidate article URL for a day, with the listing's
// last-modified timestamp when it publishes one.
type SitemapEntry struct {
	Url          string
	MaybeLastMod *time.Time
}

// SitemapResolver lists candidate article URLs for one calendar day. A
// resolver failure means "zero URLs for this day" to the orchestrator,
// never a fatal error.
type SitemapResolver interface {
	UrlsForDay(day time.Time) ([]SitemapEntry, error)
}

// CRHoySitemap reads the site's per-day plain text listing, one URL per
// line: https://www.crhoy.com/site/dist/sitemap/<YYYY-MM-DD>.txt
type CRHoySitemap struct {
	Http  *HttpClient
	Retry RetryPolicy
	// BaseUrl is the listing URL template with one %s for the date.
	BaseUrl string
}

const crhoySitemapUrl = "https://www.crhoy.com/site/dist/sitemap/%s.txt"

func (s *CRHoySitemap) UrlsForDay(day time.Time) ([]SitemapEntry, error) {
	baseUrl := s.BaseUrl
	if baseUrl == "" {
		baseUrl = crhoySitemapUrl
	}
	listingUrl := fmt.Sprintf(baseUrl, day.Format("2006-01-02"))

	var response *HttpResponse
	err := s.Retry.Do(func() error {
		var err error
		response, err = s.Http.Get(listingUrl)
		if err != nil {
			return err
		}
		if response.StatusCode != 200 {
			return oops.Newf("sitemap fetch returned %d", response.StatusCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var entries []SitemapEntry
	for _, line := range strings.Split(string(response.Body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "http") {
			continue
		}
		entries = append(entries, SitemapEntry{Url: line, MaybeLastMod: nil})
	}
	return entries, nil
}

// DiarioExtraSitemap reads the standard XML sitemap and filters <url>
// entries whose <lastmod> falls on the requested day.
type DiarioExtraSitemap struct {
	Http  *HttpClient
	Retry RetryPolicy
	// SitemapUrl defaults to the site's root sitemap.
	SitemapUrl string
}

const diarioExtraSitemapUrl = "https://www.diarioextra.com/sitemap.xml"

func (s *DiarioExtraSitemap) UrlsForDay(day time.Time) ([]SitemapEntry, error) {
	sitemapUrl := s.SitemapUrl
	if sitemapUrl == "" {
		sitemapUrl = diarioExtraSitemapUrl
	}

	var response *HttpResponse
	err := s.Retry.Do(func() error {
		var err error
		response, err = s.Http.Get(sitemapUrl)
		if err != nil {
			return err
		}
		if response.StatusCode != 200 {
			return oops.Newf("sitemap fetch returned %d", response.StatusCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(bytes.NewReader(response.Body))
	if err != nil {
		return nil, oops.Wrap(err)
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var entries []SitemapEntry
	for _, urlNode := range xmlquery.Find(doc, "//*[local-name()='url']") {
		locNode := xmlquery.FindOne(urlNode, "*[local-name()='loc']")
		if locNode == nil {
			continue
		}
		loc := strings.TrimSpace(locNode.InnerText())
		if loc == "" {
			continue
		}

		var maybeLastMod *time.Time
		if lastModNode := xmlquery.FindOne(urlNode, "*[local-name()='lastmod']"); lastModNode != nil {
			lastMod, err := parseLastMod(strings.TrimSpace(lastModNode.InnerText()))
			if err == nil {
				maybeLastMod = &lastMod
			}
		}

		if maybeLastMod != nil {
			utc := maybeLastMod.UTC()
			if utc.Before(dayStart) || !utc.Before(dayEnd) {
				continue
			}
		}
		entries = append(entries, SitemapEntry{Url: loc, MaybeLastMod: maybeLastMod})
	}
	return entries, nil
}

func parseLastMod(text string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, text)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

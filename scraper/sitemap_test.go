//go:build testing

package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
		MaxDelay:    10 * time.Millisecond,
	}
}

func TestCRHoySitemapParsesListing(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, "https://www.crhoy.com/nacionales/nota-1/\n"+
			"\n"+
			"not a url\n"+
			"https://www.crhoy.com/sucesos/nota-2/\n")
	}))
	defer server.Close()

	sitemap := &CRHoySitemap{
		Http:    NewHttpClient(context.Background(), ""),
		Retry:   testRetryPolicy(),
		BaseUrl: server.URL + "/sitemap/%s.txt",
	}
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)

	entries, err := sitemap.UrlsForDay(day)
	require.NoError(t, err)
	require.Equal(t, "/sitemap/2024-05-24.txt", requestedPath)
	require.Len(t, entries, 2)
	require.Equal(t, "https://www.crhoy.com/nacionales/nota-1/", entries[0].Url)
	require.Equal(t, "https://www.crhoy.com/sucesos/nota-2/", entries[1].Url)
	require.Nil(t, entries[0].MaybeLastMod)
}

func TestCRHoySitemapRetriesServerErrors(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "https://www.crhoy.com/nacionales/nota-1/\n")
	}))
	defer server.Close()

	sitemap := &CRHoySitemap{
		Http:    NewHttpClient(context.Background(), ""),
		Retry:   testRetryPolicy(),
		BaseUrl: server.URL + "/sitemap/%s.txt",
	}
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)

	entries, err := sitemap.UrlsForDay(day)
	require.NoError(t, err)
	require.Equal(t, 2, requests)
	require.Len(t, entries, 1)
}

func TestCRHoySitemapGivesUpAfterMaxAttempts(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	sitemap := &CRHoySitemap{
		Http:    NewHttpClient(context.Background(), ""),
		Retry:   testRetryPolicy(),
		BaseUrl: server.URL + "/sitemap/%s.txt",
	}
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)

	_, err := sitemap.UrlsForDay(day)
	require.Error(t, err)
	require.Equal(t, 3, requests)
}

func TestDiarioExtraSitemapFiltersByLastMod(t *testing.T) {
	sitemapXml := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url>
		<loc>https://www.diarioextra.com/sucesos/nota-del-dia/</loc>
		<lastmod>2025-05-29T16:02:00-06:00</lastmod>
	</url>
	<url>
		<loc>https://www.diarioextra.com/sucesos/nota-vieja/</loc>
		<lastmod>2025-05-20T08:00:00-06:00</lastmod>
	</url>
	<url>
		<loc>https://www.diarioextra.com/sucesos/nota-sin-fecha/</loc>
	</url>
	<url>
		<lastmod>2025-05-29T10:00:00-06:00</lastmod>
	</url>
	<url>
		<loc>https://www.diarioextra.com/sucesos/nota-fecha-corta/</loc>
		<lastmod>2025-05-29</lastmod>
	</url>
</urlset>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sitemapXml)
	}))
	defer server.Close()

	sitemap := &DiarioExtraSitemap{
		Http:       NewHttpClient(context.Background(), ""),
		Retry:      testRetryPolicy(),
		SitemapUrl: server.URL + "/sitemap.xml",
	}
	day := time.Date(2025, 5, 29, 0, 0, 0, 0, time.UTC)

	entries, err := sitemap.UrlsForDay(day)
	require.NoError(t, err)

	var urls []string
	for _, entry := range entries {
		urls = append(urls, entry.Url)
	}
	// entries without a lastmod are kept, the wrong day and the missing loc
	// are dropped
	require.Equal(t, []string{
		"https://www.diarioextra.com/sucesos/nota-del-dia/",
		"https://www.diarioextra.com/sucesos/nota-sin-fecha/",
		"https://www.diarioextra.com/sucesos/nota-fecha-corta/",
	}, urls)
	require.NotNil(t, entries[0].MaybeLastMod)
	require.Nil(t, entries[1].MaybeLastMod)
}

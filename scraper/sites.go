package scraper

import (
	"net/url"
	"strings"
	"time"

	"newscr/oops"
)

// SiteProfile is everything site-specific: the selector catalogs per
// logical field, the category vocabulary keyed by URL path segment, the
// timezone policy for naive timestamps and the sitemap shape.
type SiteProfile struct {
	Name   string
	Domain string

	Title    []Strategy // required
	Body     []Strategy // required
	Subtitle []Strategy
	Author   []Strategy
	Email    []Strategy
	Tags     []ListStrategy
	Date     []Strategy
	Image    []Strategy
	Summary  []Strategy

	// CategoryVocabulary maps the first URL path segment to a display
	// category; CategoryFallback is consulted when the segment is unknown.
	CategoryVocabulary map[string]string
	CategoryFallback   []Strategy

	Normalizer  DateNormalizer
	NewResolver func(httpClient *HttpClient, retry RetryPolicy) SitemapResolver
}

func (p *SiteProfile) CategoryFromUrl(articleUrl string) (string, bool) {
	parsed, err := url.Parse(articleUrl)
	if err != nil {
		return "", false
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return "", false
	}
	category, ok := p.CategoryVocabulary[strings.ToLower(segments[0])]
	return category, ok
}

// The default when neither the URL vocabulary nor the DOM yields one.
const categoryGeneral = "General"

func Sites() []*SiteProfile {
	return []*SiteProfile{crhoyProfile(), diarioExtraProfile()}
}

func SiteByName(name string) (*SiteProfile, error) {
	for _, site := range Sites() {
		if site.Name == name {
			return site, nil
		}
	}
	return nil, oops.Newf("unknown site %q", name)
}

// emailTextStrategy accepts element text only when it looks like an email.
func emailTextStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(page Page) (string, bool) {
			text, ok := page.Text(selector)
			if !ok || !strings.Contains(text, "@") {
				return "", false
			}
			return text, true
		},
	}
}

func crhoyProfile() *SiteProfile {
	return &SiteProfile{
		Name:   "crhoy",
		Domain: "www.crhoy.com",

		Title: []Strategy{
			waitTextStrategy("h1"),
		},
		Body: []Strategy{
			paragraphsStrategy("#contenido"),
		},
		Subtitle: []Strategy{
			textStrategy("h3.pre-titulo"),
			textStrategy("h2"),
		},
		Author: []Strategy{
			textOrTitleStrategy(".autor-nota a"),
			textStrategy(".author-name"),
			textStrategy(".byline a"),
			textStrategy(`[rel="author"]`),
			textStrategy(".post-author"),
			textStrategy(".article-author"),
			textOrTitleStrategy("span.autor-nota a"),
			textStrategy(".autor a"),
		},
		Email: []Strategy{
			mailtoStrategy(`span.autor-nota a[href^="mailto:"]`),
			mailtoStrategy(`.autor-nota a[href*="@"]`),
			mailtoStrategy(`a[href^="mailto:"]`),
			emailTextStrategy(".author-email"),
		},
		Tags: []ListStrategy{
			tagTextsStrategy("div.etiquetas a"),
			tagTextsStrategy(".tags a"),
			tagTextsStrategy(".post-tags a"),
			tagTextsStrategy(".article-tags a"),
			tagTextsStrategy(".categoria a"),
			tagTextsStrategy(".etiqueta"),
		},
		Date: []Strategy{
			textStrategy(".fecha-nota"),
			attrStrategy(`meta[property="article:published_time"]`, "content"),
			attrStrategy("time[datetime]", "datetime"),
		},
		Image: []Strategy{
			attrStrategy(`meta[property="og:image"]`, "content"),
			attrStrategy(".nota-imagen img", "src"),
			attrStrategy("figure img", "src"),
			attrStrategy("article img", "src"),
		},
		Summary: []Strategy{
			attrStrategy(`meta[name="description"]`, "content"),
			attrStrategy(`meta[property="og:description"]`, "content"),
		},

		CategoryVocabulary: map[string]string{
			"nacionales":      "Nacionales",
			"sucesos":         "Sucesos",
			"deportes":        "Deportes",
			"economia":        "Economía",
			"mundo":           "Mundo",
			"entretenimiento": "Entretenimiento",
			"tecnologia":      "Tecnología",
			"salud":           "Salud",
			"ambiente":        "Ambiente",
			"opinion":         "Opinión",
		},
		CategoryFallback: []Strategy{
			textStrategy("div.categoria-desktop"),
			attrStrategy(`meta[property="article:section"]`, "content"),
			textStrategy("ul.breadcrumb li:nth-child(2) a"),
		},

		// CRHoy prints naive site-local times; the save path has always
		// shifted them six hours forward to reach UTC.
		Normalizer: DateNormalizer{Policy: TimezonePolicy{FixedShift: 6 * time.Hour, Zone: nil}},
		NewResolver: func(httpClient *HttpClient, retry RetryPolicy) SitemapResolver {
			return &CRHoySitemap{Http: httpClient, Retry: retry, BaseUrl: ""}
		},
	}
}

func diarioExtraProfile() *SiteProfile {
	return &SiteProfile{
		Name:   "diarioextra",
		Domain: "www.diarioextra.com",

		Title: []Strategy{
			attrStrategy(`meta[property="og:title"]`, "content"),
			waitTextStrategy("h1"),
		},
		Body: []Strategy{
			paragraphsStrategy("div.single-layout__article"),
			paragraphsStrategy("div.entry-content"),
			paragraphsStrategy("article"),
		},
		Subtitle: []Strategy{
			attrStrategy(`meta[name="description"]`, "content"),
			textStrategy("h2"),
		},
		Author: []Strategy{
			attrStrategy(`meta[name="author"]`, "content"),
			textStrategy("span.single-layout__meta-name"),
			textStrategy(".byline a"),
			textStrategy(`[rel="author"]`),
		},
		Email: []Strategy{
			emailTextStrategy("span.single-layout__meta-email"),
			mailtoStrategy(`a[href^="mailto:"]`),
		},
		Tags: []ListStrategy{
			tagAttrsStrategy(`meta[property="article:tag"]`, "content"),
			tagTextsStrategy("x-swiper.tag-layout a"),
			tagTextsStrategy(".tags a"),
		},
		Date: []Strategy{
			attrStrategy(`meta[property="article:published_time"]`, "content"),
			textStrategy("span.single-layout__meta-date"),
			attrStrategy("time[datetime]", "datetime"),
		},
		Image: []Strategy{
			attrStrategy(`meta[property="og:image"]`, "content"),
			attrStrategy(".single-layout__image img", "src"),
			attrStrategy("figure img", "src"),
			attrStrategy("article img", "src"),
		},
		Summary: []Strategy{
			attrStrategy(`meta[name="description"]`, "content"),
			attrStrategy(`meta[property="og:description"]`, "content"),
		},

		CategoryVocabulary: map[string]string{
			"nacionales":      "Nacionales",
			"sucesos":         "Sucesos",
			"deportes":        "Deportes",
			"espectaculos":    "Espectáculos",
			"internacionales": "Internacionales",
			"opinion":         "Opinión",
		},
		CategoryFallback: []Strategy{
			textStrategy("div.feed__heading"),
			attrStrategy(`meta[property="article:section"]`, "content"),
			textStrategy("a.single-layout__meta-category"),
			textStrategy("ul.breadcrumb li:nth-last-child(2) a"),
		},

		// Diario Extra timestamps are wall-clock Costa Rica time.
		Normalizer: DateNormalizer{Policy: TimezonePolicy{FixedShift: 0, Zone: CostaRicaZone()}},
		NewResolver: func(httpClient *HttpClient, retry RetryPolicy) SitemapResolver {
			return &DiarioExtraSitemap{Http: httpClient, Retry: retry, SitemapUrl: ""}
		},
	}
}

package scraper

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"newscr/config"
)

// Pipeline turns one URL into a canonical Article or a definitive skip.
// It fails closed: a missing required field skips the whole URL rather
// than emitting a partial record.
type Pipeline struct {
	Site         *SiteProfile
	Sessions     *SessionManager
	Detector     *BlockingDetector
	MinBodyWords int
	Logger       Logger

	now func() time.Time
}

func NewPipeline(
	site *SiteProfile, sessions *SessionManager, cfg config.ScraperConfig, logger Logger,
) *Pipeline {
	return &Pipeline{
		Site:         site,
		Sessions:     sessions,
		Detector:     &BlockingDetector{MinPageChars: cfg.MinPageChars},
		MinBodyWords: cfg.MinBodyWords,
		Logger:       logger,
		now:          time.Now,
	}
}

// ScrapeArticle processes one URL. A non-nil error means the session could
// not be (re)created at all; the caller abandons the day on that. All other
// failures come back as a SkipReason.
func (p *Pipeline) ScrapeArticle(articleUrl string) (*Article, SkipReason, error) {
	session, err := p.Sessions.Session()
	if err != nil {
		return nil, SkipFetchFailed, err
	}

	page, err := session.Fetch(articleUrl)
	if err != nil {
		p.Logger.Warn("Fetch failed for %s: %v", articleUrl, err)
		p.Sessions.RecordFailure()
		p.Sessions.Probe()
		return nil, SkipFetchFailed, nil
	}

	if p.Detector.IsBlocked(page) {
		p.Logger.Warn("Blocking detected on %s (status %d)", articleUrl, page.StatusCode())
		p.Sessions.RecordBlocking()
		return nil, SkipBlocked, nil
	}

	title, titleStrategy, ok := chainExtract(page, p.Site.Title)
	if !ok {
		p.Logger.Warn("No title on %s", articleUrl)
		p.Sessions.RecordFailure()
		return nil, SkipMissingTitle, nil
	}

	body, bodyStrategy, ok := chainExtract(page, p.Site.Body)
	if !ok {
		p.Logger.Warn("No body on %s", articleUrl)
		p.Sessions.RecordFailure()
		return nil, SkipMissingBody, nil
	}

	article := &Article{
		Title:        title,
		Subtitle:     "",
		Body:         body,
		Author:       "",
		AuthorEmail:  "",
		Tags:         nil,
		PublishedAt:  time.Time{},
		Url:          articleUrl,
		SourceDomain: domainFromUrl(articleUrl),
		Category:     "",
		Summary:      "",
		ImageUrl:     "",
	}

	// Optional fields: absence is expected, never an error.
	article.Subtitle, _, _ = chainExtract(page, p.Site.Subtitle)
	article.Author, _, _ = chainExtract(page, p.Site.Author)
	article.AuthorEmail, _, _ = chainExtract(page, p.Site.Email)
	article.Tags, _, _ = chainExtractList(page, p.Site.Tags)
	article.ImageUrl, _, _ = chainExtract(page, p.Site.Image)
	article.Category = p.extractCategory(page, articleUrl)
	article.Summary = p.extractSummary(page, body)
	article.PublishedAt = p.extractPublishedAt(page, articleUrl)

	if words := article.WordCount(); words < p.MinBodyWords {
		p.Logger.Warn("Body too short on %s: %d words", articleUrl, words)
		p.Sessions.RecordFailure()
		return nil, SkipBodyTooShort, nil
	}

	p.Sessions.RecordSuccess()
	p.Logger.Info("Scraped %s (title via %s, body via %s, %d words)",
		articleUrl, titleStrategy, bodyStrategy, article.WordCount())
	return article, SkipNone, nil
}

func (p *Pipeline) extractCategory(page Page, articleUrl string) string {
	if category, ok := p.Site.CategoryFromUrl(articleUrl); ok {
		return category
	}
	if category, _, ok := chainExtract(page, p.Site.CategoryFallback); ok {
		return category
	}
	return categoryGeneral
}

const summaryMaxChars = 200

func (p *Pipeline) extractSummary(page Page, body string) string {
	if summary, _, ok := chainExtract(page, p.Site.Summary); ok {
		return summary
	}
	return truncateAtWord(body, summaryMaxChars)
}

func truncateAtWord(text string, maxChars int) string {
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:maxChars])
	if lastSpace := strings.LastIndexByte(cut, ' '); lastSpace > 0 {
		cut = cut[:lastSpace]
	}
	return strings.TrimSpace(cut) + "…"
}

func (p *Pipeline) extractPublishedAt(page Page, articleUrl string) time.Time {
	raw, strategy, ok := chainExtract(page, p.Site.Date)
	if !ok {
		p.Logger.Warn("No date element on %s, falling back to capture time", articleUrl)
		return p.now().UTC()
	}
	publishedAt, err := p.Site.Normalizer.Normalize(raw)
	if err != nil {
		if errors.Is(err, ErrUnparseableDate) {
			p.Logger.Warn("Unparseable date %q on %s (via %s), falling back to capture time",
				raw, articleUrl, strategy)
		}
		return p.now().UTC()
	}
	return publishedAt
}

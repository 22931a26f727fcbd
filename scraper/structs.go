package scraper

import (
	"net/url"
	"strings"
	"time"
)

// Article is one normalized news article, keyed by its URL. It lives for
// exactly one trip from extraction to the persistence gate.
type Article struct {
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle,omitempty"`
	Body         string    `json:"body"`
	Author       string    `json:"author,omitempty"`
	AuthorEmail  string    `json:"author_email,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	Url          string    `json:"url"`
	SourceDomain string    `json:"source_domain"`
	Category     string    `json:"category"`
	Summary      string    `json:"summary,omitempty"`
	ImageUrl     string    `json:"image_url,omitempty"`
}

func (a *Article) WordCount() int {
	return len(strings.Fields(a.Body))
}

func domainFromUrl(articleUrl string) string {
	parsed, err := url.Parse(articleUrl)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// SkipReason says why a URL produced no record. SkipNone means it did.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipFetchFailed  SkipReason = "fetch_failed"
	SkipBlocked      SkipReason = "blocked"
	SkipMissingTitle SkipReason = "missing_title"
	SkipMissingBody  SkipReason = "missing_body"
	SkipBodyTooShort SkipReason = "body_too_short"
)

// SaveStatus is the persistence gate's verdict for one record.
type SaveStatus int

const (
	SaveSaved SaveStatus = iota
	SaveDuplicate
	SaveFailed
)

func (s SaveStatus) String() string {
	switch s {
	case SaveSaved:
		return "saved"
	case SaveDuplicate:
		return "duplicate"
	case SaveFailed:
		return "failed"
	default:
		panic("Unknown save status")
	}
}

// BatchResult aggregates gate verdicts. Invalid is the caller's field:
// records the pipeline rejected before they ever reached the gate.
type BatchResult struct {
	Saved      int
	Duplicates int
	Failed     int
	Invalid    int
}

type PersistenceGate interface {
	Save(article *Article) (SaveStatus, error)
}

package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is one rendered article page. The pipeline, detectors and selector
// strategies only ever see this interface, never the rendering engine.
type Page interface {
	Url() string
	// StatusCode is 0 when the transport didn't report one.
	StatusCode() int
	Title() string
	// BodyText is the full visible text, used by the blocking heuristics.
	BodyText() string
	// WaitText waits for the element to appear before reading, bounded by
	// the session's element timeout. For required fields.
	WaitText(selector string) (string, bool)
	// Text reads immediately, no waiting.
	Text(selector string) (string, bool)
	// Texts reads all matches immediately.
	Texts(selector string) []string
	Attr(selector string, name string) (string, bool)
	Attrs(selector string, name string) []string
	// HasVisible is true when a matching element exists and is rendered
	// visible, not merely present in markup.
	HasVisible(selector string) bool
}

// StaticPage serves a pre-fetched HTML document through the Page interface.
// Tests use it directly; the static fallback fetcher wraps sitemap-adjacent
// HTML in it too.
type StaticPage struct {
	PageUrl string
	Status  int
	doc     *goquery.Document
}

func NewStaticPage(pageUrl string, status int, html string) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &StaticPage{PageUrl: pageUrl, Status: status, doc: doc}, nil
}

func (p *StaticPage) Url() string {
	return p.PageUrl
}

func (p *StaticPage) StatusCode() int {
	return p.Status
}

func (p *StaticPage) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

func (p *StaticPage) BodyText() string {
	return strings.TrimSpace(p.doc.Find("body").Text())
}

func (p *StaticPage) WaitText(selector string) (string, bool) {
	return p.Text(selector)
}

func (p *StaticPage) Text(selector string) (string, bool) {
	selection := p.doc.Find(selector).First()
	if selection.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(selection.Text())
	return text, text != ""
}

func (p *StaticPage) Texts(selector string) []string {
	var texts []string
	p.doc.Find(selector).Each(func(_ int, selection *goquery.Selection) {
		text := strings.TrimSpace(selection.Text())
		if text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

func (p *StaticPage) Attr(selector string, name string) (string, bool) {
	value, ok := p.doc.Find(selector).First().Attr(name)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (p *StaticPage) Attrs(selector string, name string) []string {
	var values []string
	p.doc.Find(selector).Each(func(_ int, selection *goquery.Selection) {
		if value, ok := selection.Attr(name); ok {
			value = strings.TrimSpace(value)
			if value != "" {
				values = append(values, value)
			}
		}
	})
	return values
}

// HasVisible approximates visibility for static documents: present and not
// inline-hidden. Good enough for the challenge-widget markers it serves.
func (p *StaticPage) HasVisible(selector string) bool {
	visible := false
	p.doc.Find(selector).EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		style, _ := selection.Attr("style")
		style = strings.ReplaceAll(style, " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
		visible = true
		return false
	})
	return visible
}

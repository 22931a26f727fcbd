package scraper

import (
	"math/rand"
	"strings"
	"time"

	"newscr/config"
	"newscr/oops"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Session is one live page-rendering handle, reused across many URLs. The
// health manager owns its lifecycle; nothing else creates or quits one.
type Session interface {
	Fetch(pageUrl string) (Page, error)
	// CurrentUrl doubles as the liveness probe.
	CurrentUrl() (string, error)
	// ClearStorage drops transient page storage and closes stray tabs so a
	// long-lived session doesn't bloat across hundreds of articles.
	ClearStorage() error
	Quit() error
}

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var windowSizes = []string{
	"1920,1080",
	"1366,768",
	"1440,900",
	"1536,864",
	"1280,720",
}

type BrowserSession struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	elementWait time.Duration
	pageLoad    time.Duration
	logger      Logger
}

// NewBrowserSession launches a headless browser with a randomized user
// agent and window size and opens the single tab the whole run shares.
func NewBrowserSession(cfg config.ScraperConfig, logger Logger) (*BrowserSession, error) {
	userAgent := userAgents[rand.Intn(len(userAgents))]
	windowSize := windowSizes[rand.Intn(len(windowSizes))]

	browserLauncher := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-gpu").
		Set("window-size", windowSize)
	browserUrl, err := browserLauncher.Launch()
	if err != nil {
		return nil, oops.Wrap(err)
	}

	browser := rod.New().ControlURL(browserUrl)
	if err := browser.Connect(); err != nil {
		browserLauncher.Kill()
		return nil, oops.Wrap(err)
	}
	logger.Info("Connected to the browser (ua=%q window=%s)", userAgent, windowSize)

	session := &BrowserSession{
		launcher:    browserLauncher,
		browser:     browser,
		page:        nil,
		elementWait: cfg.ElementWait.Std(),
		pageLoad:    cfg.PageLoad.Std(),
		logger:      logger,
	}

	page, err := browser.Page(proto.TargetCreateTarget{}) //nolint:exhaustruct
	if err != nil {
		session.Quit()
		return nil, oops.Wrap(err)
	}
	err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}) //nolint:exhaustruct
	if err != nil {
		session.Quit()
		return nil, oops.Wrap(err)
	}
	// Headless Chromium advertises itself through navigator.webdriver,
	// which the CDN challenge scripts check first.
	_, err = page.EvalOnNewDocument(
		`Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`)
	if err != nil {
		session.Quit()
		return nil, oops.Wrap(err)
	}

	session.page = page
	return session, nil
}

func (s *BrowserSession) Fetch(pageUrl string) (Page, error) {
	page := s.page.Timeout(s.pageLoad)

	status := 0
	waitResponse := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			status = int(e.Response.Status)
			return true
		}
		return false
	})
	if err := page.Navigate(pageUrl); err != nil {
		return nil, oops.Wrapf(err, "navigate %s", pageUrl)
	}
	waitResponse()
	if err := page.WaitLoad(); err != nil {
		s.logger.Warn("Page load wait ended early for %s: %v", pageUrl, err)
	}

	return &RodPage{
		page:        s.page,
		pageUrl:     pageUrl,
		status:      status,
		elementWait: s.elementWait,
	}, nil
}

func (s *BrowserSession) CurrentUrl() (string, error) {
	info, err := s.page.Timeout(5 * time.Second).Info()
	if err != nil {
		return "", oops.Wrap(err)
	}
	return info.URL, nil
}

func (s *BrowserSession) ClearStorage() error {
	_, err := s.page.Eval(
		`() => { try { localStorage.clear(); sessionStorage.clear(); } catch (e) {} }`)
	if err != nil {
		return oops.Wrap(err)
	}

	pages, err := s.browser.Pages()
	if err != nil {
		return oops.Wrap(err)
	}
	for _, extraPage := range pages {
		if extraPage.TargetID == s.page.TargetID {
			continue
		}
		if err := extraPage.Close(); err != nil {
			s.logger.Warn("Couldn't close extra page: %v", err)
		}
	}
	return nil
}

func (s *BrowserSession) Quit() error {
	err := s.browser.Close()
	s.launcher.Kill()
	if err != nil {
		return oops.Wrap(err)
	}
	return nil
}

// RodPage adapts one navigated rod tab to the Page interface.
type RodPage struct {
	page        *rod.Page
	pageUrl     string
	status      int
	elementWait time.Duration
}

func (p *RodPage) Url() string {
	return p.pageUrl
}

func (p *RodPage) StatusCode() int {
	return p.status
}

func (p *RodPage) Title() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

func (p *RodPage) BodyText() string {
	has, element, err := p.page.Has("body")
	if err != nil || !has {
		return ""
	}
	text, err := element.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (p *RodPage) WaitText(selector string) (string, bool) {
	element, err := p.page.Timeout(p.elementWait).Element(selector)
	if err != nil {
		return "", false
	}
	text, err := element.Text()
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func (p *RodPage) Text(selector string) (string, bool) {
	has, element, err := p.page.Has(selector)
	if err != nil || !has {
		return "", false
	}
	text, err := element.Text()
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func (p *RodPage) Texts(selector string) []string {
	elements, err := p.page.Elements(selector)
	if err != nil {
		return nil
	}
	var texts []string
	for _, element := range elements {
		text, err := element.Text()
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func (p *RodPage) Attr(selector string, name string) (string, bool) {
	has, element, err := p.page.Has(selector)
	if err != nil || !has {
		return "", false
	}
	value, err := element.Attribute(name)
	if err != nil || value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed, trimmed != ""
}

func (p *RodPage) Attrs(selector string, name string) []string {
	elements, err := p.page.Elements(selector)
	if err != nil {
		return nil
	}
	var values []string
	for _, element := range elements {
		value, err := element.Attribute(name)
		if err != nil || value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func (p *RodPage) HasVisible(selector string) bool {
	has, element, err := p.page.Has(selector)
	if err != nil || !has {
		return false
	}
	visible, err := element.Visible()
	return err == nil && visible
}

//go:build testing

package scraper

import (
	"errors"
	"strings"
	"time"

	"newscr/config"
)

// fakeSession serves canned pages keyed by URL.
type fakeSession struct {
	pages      map[string]Page
	fetchErr   error
	currentErr error
	quitCount  int
	clearCount int
}

func (s *fakeSession) Fetch(pageUrl string) (Page, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	page, ok := s.pages[pageUrl]
	if !ok {
		return nil, errors.New("no such page")
	}
	return page, nil
}

func (s *fakeSession) CurrentUrl() (string, error) {
	if s.currentErr != nil {
		return "", s.currentErr
	}
	return "about:blank", nil
}

func (s *fakeSession) ClearStorage() error {
	s.clearCount++
	return nil
}

func (s *fakeSession) Quit() error {
	s.quitCount++
	return nil
}

func newTestSessionManager(session Session) *SessionManager {
	manager := NewSessionManager(
		config.Cfg.Scraper,
		func() (Session, error) { return session, nil },
		NewDummyLogger(),
	)
	manager.sleep = func(time.Duration) {}
	return manager
}

func mustStaticPage(pageUrl string, status int, html string) *StaticPage {
	page, err := NewStaticPage(pageUrl, status, html)
	if err != nil {
		panic(err)
	}
	return page
}

const fillerParagraph = "La asamblea discutió el proyecto de ley durante toda la " +
	"tarde mientras los diputados presentaban mociones de fondo."

// longFiller is plain page padding that keeps the blocking detector's
// short-body heuristic quiet.
func longFiller() string {
	filler := ""
	for range 30 {
		filler += "<p>" + fillerParagraph + "</p>\n"
	}
	return filler
}

// fillerBody is what paragraph extraction yields for longFiller markup.
func fillerBody() string {
	paragraphs := make([]string, 30)
	for i := range paragraphs {
		paragraphs[i] = fillerParagraph
	}
	return strings.Join(paragraphs, "\n\n")
}

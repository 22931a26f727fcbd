package scraper

import "strings"

// Indicators that automated-traffic defenses have engaged. Any one of them
// classifies the response as blocked.
var blockingIndicators = []string{
	"captcha",
	"blocked",
	"access denied",
	"too many requests",
	"rate limit",
	"cloudflare",
	"security check",
	"unusual traffic",
	"bot detection",
	"please verify",
	"human verification",
}

// Challenge widgets are only a blocking signal when actually rendered;
// plenty of pages ship dormant captcha markup.
var challengeSelectors = []string{
	`[id*="captcha"]`,
	`[class*="captcha"]`,
	`[id*="challenge"]`,
	`[class*="challenge"]`,
	`#cf-wrapper`,
	`.cf-browser-verification`,
}

// BlockingDetector classifies a fetched page as blocked/challenged vs
// usable. Consulted before any extraction happens.
type BlockingDetector struct {
	// MinPageChars is the body length below which a response is treated
	// as a challenge stub even without keyword matches.
	MinPageChars int
}

func (d *BlockingDetector) IsBlocked(page Page) bool {
	switch page.StatusCode() {
	case 403, 429, 503:
		return true
	}

	bodyText := page.BodyText()
	haystack := strings.ToLower(page.Title() + "\n" + bodyText)
	for _, indicator := range blockingIndicators {
		if strings.Contains(haystack, indicator) {
			return true
		}
	}

	if len(bodyText) < d.MinPageChars {
		return true
	}

	for _, selector := range challengeSelectors {
		if page.HasVisible(selector) {
			return true
		}
	}

	return false
}

package scraper

import "strings"

// Strategy is one concrete way to read a logical field off a page. A
// strategy that finds nothing, or whose selector blows up inside the
// rendering engine, reports ok=false; the chain moves on. Ordering is
// deliberate: site-specific selectors come before generic fallbacks.
type Strategy struct {
	Name    string
	Extract func(page Page) (string, bool)
}

// ListStrategy is the multi-value counterpart, used for tags.
type ListStrategy struct {
	Name    string
	Extract func(page Page) ([]string, bool)
}

// chainExtract returns the first non-empty result and the strategy that
// produced it. Later strategies are never invoked after a hit.
func chainExtract(page Page, strategies []Strategy) (string, string, bool) {
	for _, strategy := range strategies {
		if value, ok := strategy.Extract(page); ok && value != "" {
			return value, strategy.Name, true
		}
	}
	return "", "", false
}

func chainExtractList(page Page, strategies []ListStrategy) ([]string, string, bool) {
	for _, strategy := range strategies {
		if values, ok := strategy.Extract(page); ok && len(values) > 0 {
			return values, strategy.Name, true
		}
	}
	return nil, "", false
}

func textStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(page Page) (string, bool) {
			return page.Text(selector)
		},
	}
}

func waitTextStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(page Page) (string, bool) {
			return page.WaitText(selector)
		},
	}
}

func attrStrategy(selector string, name string) Strategy {
	return Strategy{
		Name: selector + "[" + name + "]",
		Extract: func(page Page) (string, bool) {
			return page.Attr(selector, name)
		},
	}
}

// textOrTitleStrategy prefers the element text and falls back to its title
// attribute, the shape CRHoy author links come in.
func textOrTitleStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(page Page) (string, bool) {
			if text, ok := page.Text(selector); ok {
				return text, true
			}
			return page.Attr(selector, "title")
		},
	}
}

// mailtoStrategy reads an email out of a mail link's href.
func mailtoStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(page Page) (string, bool) {
			href, ok := page.Attr(selector, "href")
			if !ok || !strings.Contains(href, "mailto:") {
				return "", false
			}
			email := strings.TrimSpace(strings.TrimPrefix(href, "mailto:"))
			return email, email != ""
		},
	}
}

// paragraphsStrategy concatenates the paragraphs under a container with
// blank lines between them, waiting for the container to render first.
func paragraphsStrategy(containerSelector string) Strategy {
	return Strategy{
		Name: containerSelector,
		Extract: func(page Page) (string, bool) {
			if _, ok := page.WaitText(containerSelector); !ok {
				return "", false
			}
			paragraphs := page.Texts(containerSelector + " p, " + containerSelector + " blockquote")
			if len(paragraphs) == 0 {
				return "", false
			}
			return strings.Join(paragraphs, "\n\n"), true
		},
	}
}

func tagTextsStrategy(selector string) ListStrategy {
	return ListStrategy{
		Name: selector,
		Extract: func(page Page) ([]string, bool) {
			texts := page.Texts(selector)
			var tags []string
			for _, text := range texts {
				tag := strings.TrimSpace(strings.TrimPrefix(text, "#"))
				if tag != "" {
					tags = append(tags, tag)
				}
			}
			return tags, len(tags) > 0
		},
	}
}

func tagAttrsStrategy(selector string, name string) ListStrategy {
	return ListStrategy{
		Name: selector + "[" + name + "]",
		Extract: func(page Page) ([]string, bool) {
			values := page.Attrs(selector, name)
			var tags []string
			for _, value := range values {
				tag := strings.TrimSpace(strings.TrimPrefix(value, "#"))
				if tag != "" {
					tags = append(tags, tag)
				}
			}
			return tags, len(tags) > 0
		},
	}
}

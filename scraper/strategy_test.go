//go:build testing

package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainExtractFirstMatchWins(t *testing.T) {
	page := mustStaticPage("https://example.com/a", 200, `
		<html><body>
			<h1>Primary</h1>
			<h2>Fallback</h2>
		</body></html>
	`)

	invoked := []string{}
	counting := func(name string, inner Strategy) Strategy {
		return Strategy{
			Name: name,
			Extract: func(page Page) (string, bool) {
				invoked = append(invoked, name)
				return inner.Extract(page)
			},
		}
	}

	value, name, ok := chainExtract(page, []Strategy{
		counting("missing", textStrategy(".no-such-thing")),
		counting("h1", textStrategy("h1")),
		counting("h2", textStrategy("h2")),
	})
	require.True(t, ok)
	require.Equal(t, "Primary", value)
	require.Equal(t, "h1", name)
	// the chain short-circuits, h2 is never consulted
	require.Equal(t, []string{"missing", "h1"}, invoked)
}

func TestChainExtractNothingFound(t *testing.T) {
	page := mustStaticPage("https://example.com/a", 200, "<html><body></body></html>")

	value, name, ok := chainExtract(page, []Strategy{
		textStrategy("h1"),
		attrStrategy(`meta[property="og:title"]`, "content"),
	})
	require.False(t, ok)
	require.Equal(t, "", value)
	require.Equal(t, "", name)
}

func TestChainExtractSkipsEmptyValues(t *testing.T) {
	page := mustStaticPage("https://example.com/a", 200, `
		<html><body>
			<h1>   </h1>
			<h2>Real title</h2>
		</body></html>
	`)

	value, name, ok := chainExtract(page, []Strategy{
		textStrategy("h1"),
		textStrategy("h2"),
	})
	require.True(t, ok)
	require.Equal(t, "Real title", value)
	require.Equal(t, "h2", name)
}

func TestTextOrTitleStrategy(t *testing.T) {
	page := mustStaticPage("https://example.com/a", 200, `
		<html><body>
			<div class="autor-nota"><a title="María Rojas"></a></div>
		</body></html>
	`)

	value, ok := textOrTitleStrategy(".autor-nota a").Extract(page)
	require.True(t, ok)
	require.Equal(t, "María Rojas", value)
}

func TestMailtoStrategy(t *testing.T) {
	page := mustStaticPage("https://example.com/a", 200, `
		<html><body>
			<a class="plain" href="https://example.com">site</a>
			<a class="mail" href="mailto:redaccion@crhoy.com">escríbanos</a>
		</body></html>
	`)

	_, ok := mailtoStrategy("a.plain").Extract(page)
	require.False(t, ok)

	email, ok := mailtoStrategy("a.mail").Extract(page)
	require.True(t, ok)
	require.Equal(t, "redaccion@crhoy.com", email)
}

func TestParagraphsStrategy(t *testing.T) {
	page := mustStaticPage("https://example.com/a", 200, `
		<html><body>
			<div id="contenido">
				<p>Primer párrafo.</p>
				<p>Segundo párrafo.</p>
				<blockquote>Una cita.</blockquote>
			</div>
		</body></html>
	`)

	body, ok := paragraphsStrategy("#contenido").Extract(page)
	require.True(t, ok)
	require.Equal(t, "Primer párrafo.\n\nSegundo párrafo.\n\nUna cita.", body)

	_, ok = paragraphsStrategy("#no-such-container").Extract(page)
	require.False(t, ok)
}

func TestTagStrategiesStripHashes(t *testing.T) {
	page := mustStaticPage("https://example.com/a", 200, `
		<html><head>
			<meta property="article:tag" content="#sucesos">
			<meta property="article:tag" content="política">
			<meta property="article:tag" content="  ">
		</head><body>
			<div class="tags">
				<a>#economía</a>
				<a>salud</a>
			</div>
		</body></html>
	`)

	tags, _, ok := chainExtractList(page, []ListStrategy{tagTextsStrategy(".tags a")})
	require.True(t, ok)
	require.Equal(t, []string{"economía", "salud"}, tags)

	tags, _, ok = chainExtractList(page, []ListStrategy{
		tagAttrsStrategy(`meta[property="article:tag"]`, "content"),
	})
	require.True(t, ok)
	require.Equal(t, []string{"sucesos", "política"}, tags)
}

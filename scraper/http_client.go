package scraper

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"newscr/oops"
)

type HttpResponse struct {
	StatusCode int
	Body       []byte
}

// HttpClient fetches sitemap listings. Page fetches go through the browser
// session instead; this client never touches article URLs.
type HttpClient struct {
	ctx           context.Context
	client        *http.Client
	userAgent     string
	referer       string
	prevTimestamp time.Time
}

func NewHttpClient(ctx context.Context, referer string) *HttpClient {
	var client http.Client
	client.Timeout = time.Minute
	return &HttpClient{
		ctx:           ctx,
		client:        &client,
		userAgent:     userAgents[rand.Intn(len(userAgents))],
		referer:       referer,
		prevTimestamp: time.Time{},
	}
}

const maxContentLength = 20 * 1024 * 1024

// Get fetches one URL, throttled to at most one request per second, with
// browser-like headers the sitemap endpoints expect.
func (c *HttpClient) Get(requestUrl string) (*HttpResponse, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	newTimestamp := time.Now().UTC()
	if !c.prevTimestamp.IsZero() {
		timeDelta := newTimestamp.Sub(c.prevTimestamp)
		if timeDelta < time.Second {
			time.Sleep(time.Second - timeDelta)
			newTimestamp = time.Now().UTC()
		}
	}
	c.prevTimestamp = newTimestamp

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	req.Header.Add("User-Agent", c.userAgent)
	req.Header.Add("Accept", "text/plain, application/xml, text/xml, */*; q=0.1")
	req.Header.Add("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	if c.referer != "" {
		req.Header.Add("Referer", c.referer)
	}

	resp, err := c.client.Do(req)
	if os.IsTimeout(err) {
		return nil, oops.Newf("timeout fetching %s", requestUrl)
	} else if err != nil {
		return nil, oops.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > maxContentLength {
		return nil, oops.Newf("response too big: %d bytes", resp.ContentLength)
	}

	var body []byte
	var buf [1024 * 1024]byte
	for {
		n, err := resp.Body.Read(buf[:])
		if n > 0 {
			body = append(body, buf[:n]...)
			if len(body) > maxContentLength {
				return nil, oops.New("response too big: " + strconv.Itoa(len(body)) + " bytes")
			}
		}
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, oops.Wrap(err)
		}
	}

	return &HttpResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/warpdl/warpcrawl/pkg/logger"
	"github.com/warpdl/warpcrawl/pkg/warplib"
	"golang.org/x/time/rate"
)

// DefaultMaxBody caps how much of a page is read into memory.
const DefaultMaxBody = 16 << 20

var ErrBodyTooLarge = errors.New("response body too large")

// Request describes one outbound page request.
type Request struct {
	Method string
	URL    string
	// Body is sent verbatim with ContentType.
	Body        string
	ContentType string
	// Jar supplies and receives cookies for this request only.
	Jar http.CookieJar
}

type Options struct {
	// HTTPClient is copied per request; built from Proxy when nil.
	HTTPClient *http.Client
	Proxy      string
	UserAgent  string
	// RequestsPerSecond limits page requests; 0 disables the limit.
	RequestsPerSecond float64
	Burst             int
	Classifier        Classifier
	MaxBody           int64
	Logger            logger.Logger
}

type Client struct {
	http       *http.Client
	ua         string
	limiter    *rate.Limiter
	classifier Classifier
	maxBody    int64
	l          logger.Logger
}

func New(opts Options) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		var err error
		if hc, err = warplib.NewHTTPClientWithProxy(opts.Proxy); err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = warplib.DEF_USER_AGENT
	}
	if opts.Classifier == nil {
		opts.Classifier = ClassifierFunc(func(*Page) Kind { return PageContent })
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	c := &Client{
		http:       hc,
		ua:         opts.UserAgent,
		classifier: opts.Classifier,
		maxBody:    opts.MaxBody,
		l:          logger.OrNop(opts.Logger),
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// HTTPClient returns the client shared with the transfer engine.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Do sends req, follows redirects and returns the classified page.
func (c *Client) Do(ctx context.Context, req Request) (*Page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("User-Agent", c.ua)
	if req.ContentType != "" {
		hreq.Header.Set("Content-Type", req.ContentType)
	}

	hc := *c.http
	hc.Jar = req.Jar
	resp, err := hc.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s", ErrBodyTooLarge, req.URL)
	}
	page := &Page{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
	page.Kind = c.classifier.Classify(page)
	c.l.Debug("%s %s -> %d %s (%s)", method, req.URL, resp.StatusCode, page.URL, page.Kind)
	return page, nil
}

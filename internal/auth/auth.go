// Package auth makes session expiry invisible to page consumers. When a
// request lands on the login page the Interceptor logs in with the site
// credentials and replays the original request before handing the result on.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/warpdl/warpcrawl/internal/fetch"
	"github.com/warpdl/warpcrawl/pkg/credman"
	"github.com/warpdl/warpcrawl/pkg/logger"
)

const formContentType = "application/x-www-form-urlencoded"

var ErrNoLoginURL = errors.New("login URL is empty")

// State is the position of an Exchange in the login workflow.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Continuation consumes the final page of a request.
type Continuation func(ctx context.Context, page *fetch.Page) error

// Request is what a caller wants fetched. SessionKey defaults to the
// hostname of URL.
type Request struct {
	URL        string
	SessionKey string
}

// Exchange carries the original request through a login.
type Exchange struct {
	OriginalURL  string
	Continuation Continuation
	SessionKey   string
	State        State
}

// Fetcher is implemented by *fetch.Client.
type Fetcher interface {
	Do(ctx context.Context, req fetch.Request) (*fetch.Page, error)
}

type Options struct {
	LoginURL    string
	Credentials credman.Credentials
	Logger      logger.Logger
	// Trace observes every state change of an exchange.
	Trace func(ex Exchange)
}

type Interceptor struct {
	client   Fetcher
	session  *credman.Session
	loginURL string
	creds    credman.Credentials
	l        logger.Logger
	trace    func(Exchange)
}

// New fails with credman.ErrMissingCredentials when the credentials are
// incomplete.
func New(client Fetcher, session *credman.Session, opts Options) (*Interceptor, error) {
	if err := opts.Credentials.Validate(); err != nil {
		return nil, err
	}
	if opts.LoginURL == "" {
		return nil, ErrNoLoginURL
	}
	trace := opts.Trace
	if trace == nil {
		trace = func(Exchange) {}
	}
	return &Interceptor{
		client:   client,
		session:  session,
		loginURL: opts.LoginURL,
		creds:    opts.Credentials,
		l:        logger.OrNop(opts.Logger),
		trace:    trace,
	}, nil
}

// Session returns the session the interceptor reads and writes.
func (i *Interceptor) Session() *credman.Session {
	return i.session
}

// Fetch gets req.URL and calls cont exactly once with the final page. If the
// first response is the login page, cont is held back while the login form
// is posted and req.URL is fetched again.
func (i *Interceptor) Fetch(ctx context.Context, req Request, cont Continuation) error {
	key := req.SessionKey
	if key == "" {
		key = credman.HostKey(req.URL)
	}
	ex := &Exchange{
		OriginalURL:  req.URL,
		Continuation: cont,
		SessionKey:   key,
		State:        Unauthenticated,
	}
	i.trace(*ex)

	page, err := i.leg(ctx, ex, fetch.Request{Method: http.MethodGet, URL: ex.OriginalURL})
	if err != nil {
		return err
	}
	if page.Kind != fetch.PageLogin {
		i.transition(ex, Authenticated)
		return ex.Continuation(ctx, page)
	}

	i.transition(ex, Authenticating)
	i.l.Info("session for %s expired, logging in as %s", ex.SessionKey, i.creds.Username)
	if _, err := i.leg(ctx, ex, fetch.Request{
		Method:      http.MethodPost,
		URL:         i.loginURL,
		Body:        LoginForm(i.creds),
		ContentType: formContentType,
	}); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	page, err = i.leg(ctx, ex, fetch.Request{Method: http.MethodGet, URL: ex.OriginalURL})
	if err != nil {
		return err
	}
	i.transition(ex, Authenticated)
	if page.Kind == fetch.PageLogin {
		// No success check on the login itself; the replay is handed on as is.
		i.l.Warning("still on the login page after logging in as %s, replaying %s", i.creds.Username, ex.OriginalURL)
	}
	return ex.Continuation(ctx, page)
}

func (i *Interceptor) transition(ex *Exchange, s State) {
	ex.State = s
	i.trace(*ex)
}

// leg sends one request of an exchange with the jar of its session key. The
// persisted cookies are loaded before and saved after, so each leg is a
// full load-mutate-save cycle.
func (i *Interceptor) leg(ctx context.Context, ex *Exchange, req fetch.Request) (*fetch.Page, error) {
	if err := i.session.Reload(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	req.Jar = i.session.Jar(ex.SessionKey)
	page, err := i.client.Do(ctx, req)
	if serr := i.session.Save(); serr != nil {
		if err == nil {
			err = fmt.Errorf("save session: %w", serr)
		} else {
			i.l.Error("save session: %v", serr)
		}
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

// LoginForm encodes the login body. Field order is fixed.
func LoginForm(c credman.Credentials) string {
	return "email=" + url.QueryEscape(c.Username) +
		"&passwd=" + url.QueryEscape(c.Password) +
		"&keepalive=on"
}

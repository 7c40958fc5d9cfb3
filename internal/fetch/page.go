// Package fetch is the request layer of the crawler. Every outbound page
// request goes through Client, which applies the proxy, User-Agent and rate
// limit and tags the response with a typed classification.
package fetch

import (
	"net/http"
	"net/url"
	"strings"
)

// Kind classifies a fetched page.
type Kind int

const (
	PageContent Kind = iota
	// PageLogin means the server answered with its login page instead of
	// the requested content.
	PageLogin
)

func (k Kind) String() string {
	if k == PageLogin {
		return "login"
	}
	return "content"
}

// Page is a fully read response.
type Page struct {
	// URL is the final URL after redirects.
	URL        *url.URL
	StatusCode int
	Header     http.Header
	Body       []byte
	Kind       Kind
}

// Classifier decides the Kind of a page.
type Classifier interface {
	Classify(p *Page) Kind
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(p *Page) Kind

func (f ClassifierFunc) Classify(p *Page) Kind { return f(p) }

// LoginPageClassifier marks pages whose final URL is the login page. Scheme
// and host compare case-insensitively; query and fragment are ignored.
type LoginPageClassifier struct {
	loginPage string
}

func NewLoginPageClassifier(loginPageURL string) (*LoginPageClassifier, error) {
	u, err := url.Parse(loginPageURL)
	if err != nil {
		return nil, err
	}
	return &LoginPageClassifier{loginPage: normalize(u)}, nil
}

func (c *LoginPageClassifier) Classify(p *Page) Kind {
	if p == nil || p.URL == nil {
		return PageContent
	}
	if normalize(p.URL) == c.loginPage {
		return PageLogin
	}
	return PageContent
}

func normalize(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path
}

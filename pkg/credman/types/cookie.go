// Package types defines the data structures persisted by the credman
// package for session management.
package types

import (
	"net/http"
	"time"
)

// Cookie is the persisted form of a server-issued cookie held in a session
// jar. It mirrors the fields of http.Cookie that matter for replaying a
// session and adds the jar bookkeeping needed to match it again.
// Value is SENSITIVE and must never be logged.
type Cookie struct {
	// Name is the cookie's identifier.
	Name string
	// Value is the cookie's content.
	Value string
	// Domain is the canonical (lower-case, no leading dot) domain the cookie applies to.
	Domain string
	// Path scopes the cookie to request paths with this prefix.
	Path string
	// Expires is the absolute expiry; zero means a session cookie.
	Expires time.Time
	// Secure restricts the cookie to https requests.
	Secure bool
	// HttpOnly is kept for fidelity; it has no effect on a crawler.
	HttpOnly bool
	// HostOnly is true when the server did not send a Domain attribute,
	// in which case the cookie only matches Domain exactly.
	HostOnly bool
	// Created orders cookies with equal path length.
	Created time.Time
}

// Expired reports whether the cookie has an explicit expiry before now.
func (c *Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// HTTP returns the request-side representation of the cookie.
func (c *Cookie) HTTP() *http.Cookie {
	return &http.Cookie{Name: c.Name, Value: c.Value}
}

// Package cookies reads cookies for one site out of a browser cookie store so
// a crawl session can start already logged in. Supported stores are Firefox
// (moz_cookies SQLite), Chrome-family browsers (cookies SQLite, unencrypted
// values only) and Netscape cookies.txt files.
//
// Cookie values are never logged.
package cookies

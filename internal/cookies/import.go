package cookies

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/warpdl/warpcrawl/pkg/logger"
)

// Auto asks Import to search the installed browsers instead of reading a
// given file.
const Auto = "auto"

// Importer reads cookies for one domain from a cookie store.
type Importer struct {
	l   logger.Logger
	now func() time.Time
}

// NewImporter returns an Importer; a nil logger discards output.
func NewImporter(l logger.Logger) *Importer {
	return &Importer{l: logger.OrNop(l), now: time.Now}
}

// Import returns the unexpired cookies of domain and its subdomains found
// at path. Domain cookies carry a leading dot in Domain, host-only cookies
// do not. A path of "auto" searches the installed browsers.
func (im *Importer) Import(path, domain string) ([]*http.Cookie, *Source, error) {
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	if domain == "" {
		return nil, nil, fmt.Errorf("cookies: empty domain")
	}
	if path == Auto {
		return im.Detect(domain)
	}
	return im.importFile(path, domain)
}

func (im *Importer) importFile(path, domain string) ([]*http.Cookie, *Source, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, nil, err
	}
	src := &Source{Path: path, Format: format}

	var cookies []*http.Cookie
	switch format {
	case FormatNetscape:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		cookies, err = parseNetscape(f, domain, im.now(), im.l)
		if err != nil {
			return nil, nil, err
		}
	case FormatFirefox, FormatChrome:
		s := firefoxSchema
		if format == FormatChrome {
			s = chromeSchema
		}
		copied, cleanup, err := SafeCopy(path)
		if err != nil {
			return nil, nil, err
		}
		defer cleanup()
		cookies, err = parseSQLite(copied, domain, s, im.now())
		if err != nil {
			return nil, nil, err
		}
		src.Browser = s.browser
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, path)
	}
	im.l.Info("cookies: read %d cookie(s) for %s from %s store", len(cookies), domain, format)
	return cookies, src, nil
}

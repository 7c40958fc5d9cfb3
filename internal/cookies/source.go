package cookies

// Format identifies the format of a browser cookie store.
type Format int

const (
	FormatUnknown Format = iota
	FormatFirefox
	// FormatChrome stores encrypted values in most installs; only rows with a
	// plain value are usable.
	FormatChrome
	FormatNetscape
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "firefox"
	case FormatChrome:
		return "chrome"
	case FormatNetscape:
		return "netscape"
	}
	return "unknown"
}

// Source describes where cookies were imported from.
type Source struct {
	Path    string
	Format  Format
	Browser string
}

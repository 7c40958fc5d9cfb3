package cookies

import (
	"bufio"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var ErrNoBrowserStore = errors.New("no supported browser cookie store found")

// browser lists where one browser keeps its cookies. Firefox-family
// browsers are located through profiles.ini, Chromium-family ones by a
// direct file path. Paths are relative to the user's config root.
type browser struct {
	name     string
	profiles []string
	files    []string
}

// browserTable is ordered by lookup priority.
var browserTable = map[string][]browser{
	"linux": {
		{name: "Firefox", profiles: []string{"~/.mozilla/firefox/profiles.ini", "~/snap/firefox/common/.mozilla/firefox/profiles.ini"}},
		{name: "LibreWolf", profiles: []string{"~/.librewolf/profiles.ini"}},
		{name: "Chrome", files: []string{"~/.config/google-chrome/Default/Cookies"}},
		{name: "Chromium", files: []string{"~/.config/chromium/Default/Cookies"}},
		{name: "Edge", files: []string{"~/.config/microsoft-edge/Default/Cookies"}},
		{name: "Brave", files: []string{"~/.config/BraveSoftware/Brave-Browser/Default/Cookies"}},
	},
	"darwin": {
		{name: "Firefox", profiles: []string{"~/Library/Application Support/Firefox/profiles.ini"}},
		{name: "LibreWolf", profiles: []string{"~/Library/Application Support/librewolf/profiles.ini"}},
		{name: "Chrome", files: []string{"~/Library/Application Support/Google/Chrome/Default/Cookies"}},
		{name: "Chromium", files: []string{"~/Library/Application Support/Chromium/Default/Cookies"}},
		{name: "Edge", files: []string{"~/Library/Application Support/Microsoft Edge/Default/Cookies"}},
		{name: "Brave", files: []string{"~/Library/Application Support/BraveSoftware/Brave-Browser/Default/Cookies"}},
	},
	"windows": {
		{name: "Firefox", profiles: []string{"%APPDATA%/Mozilla/Firefox/profiles.ini"}},
		{name: "LibreWolf", profiles: []string{"%APPDATA%/librewolf/profiles.ini"}},
		{name: "Chrome", files: []string{"%LOCALAPPDATA%/Google/Chrome/User Data/Default/Network/Cookies"}},
		{name: "Chromium", files: []string{"%LOCALAPPDATA%/Chromium/User Data/Default/Network/Cookies"}},
		{name: "Edge", files: []string{"%LOCALAPPDATA%/Microsoft/Edge/User Data/Default/Network/Cookies"}},
		{name: "Brave", files: []string{"%LOCALAPPDATA%/BraveSoftware/Brave-Browser/User Data/Default/Network/Cookies"}},
	},
}

// expand resolves ~ and %VAR% prefixes.
func expand(p, home string) string {
	switch {
	case strings.HasPrefix(p, "~/"):
		p = filepath.Join(home, p[2:])
	case strings.HasPrefix(p, "%"):
		if name, rest, ok := strings.Cut(p[1:], "%"); ok {
			p = os.Getenv(name) + rest
		}
	}
	return filepath.FromSlash(p)
}

// candidates returns the cookie store paths of b in lookup order.
func (b browser) candidates(home string) []string {
	var out []string
	for _, ini := range b.profiles {
		if dir := parseProfilesIni(expand(ini, home)); dir != "" {
			out = append(out, filepath.Join(dir, "cookies.sqlite"))
		}
	}
	for _, f := range b.files {
		out = append(out, expand(f, home))
	}
	return out
}

// parseProfilesIni returns the default profile directory named by a
// Firefox profiles.ini. An [Install*] Default= key wins over a [Profile*]
// section with Default=1. Returns "" when nothing usable is found.
func parseProfilesIni(iniPath string) string {
	f, err := os.Open(iniPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	var (
		dir              = filepath.Dir(iniPath)
		installDefault   string
		profileDefault   string
		section          string
		profilePath      string
		profileIsDefault bool
	)
	flush := func() {
		if strings.HasPrefix(section, "Profile") && profileIsDefault && profileDefault == "" {
			profileDefault = profilePath
		}
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			flush()
			section = strings.Trim(line, "[]")
			profilePath, profileIsDefault = "", false
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch {
		case strings.HasPrefix(section, "Install") && k == "Default" && installDefault == "":
			installDefault = filepath.Join(dir, filepath.FromSlash(v))
		case strings.HasPrefix(section, "Profile") && k == "Path":
			profilePath = filepath.Join(dir, filepath.FromSlash(v))
		case strings.HasPrefix(section, "Profile") && k == "Default" && v == "1":
			profileIsDefault = true
		}
	}
	flush()
	if installDefault != "" {
		return installDefault
	}
	return profileDefault
}

// detectIn returns cookies from the first browser in browsers whose store
// exists and imports cleanly.
func (im *Importer) detectIn(domain, home string, browsers []browser) ([]*http.Cookie, *Source, error) {
	for _, b := range browsers {
		for _, path := range b.candidates(home) {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cookies, src, err := im.importFile(path, domain)
			if err != nil {
				im.l.Debug("cookies: skip %s store %s: %v", b.name, path, err)
				continue
			}
			src.Browser = b.name
			return cookies, src, nil
		}
	}
	return nil, nil, ErrNoBrowserStore
}

// Detect scans the known browser stores of the current platform in
// priority order, Firefox first.
func (im *Importer) Detect(domain string) ([]*http.Cookie, *Source, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, err
	}
	return im.detectIn(domain, home, browserTable[runtime.GOOS])
}

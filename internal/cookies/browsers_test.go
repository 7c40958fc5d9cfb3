package cookies

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestParseProfilesIni(t *testing.T) {
	tests := []struct {
		name string
		ini  string
		want string
	}{
		{
			name: "install default wins",
			ini:  "[Profile0]\nPath=old.default\nDefault=1\n\n[Install4F96D1932A9F858E]\nDefault=abc.default-release\n",
			want: "abc.default-release",
		},
		{
			name: "profile default",
			ini:  "[General]\nStartWithLastProfile=1\n[Profile1]\nPath=a.other\n[Profile0]\nDefault=1\nPath=b.default\n",
			want: "b.default",
		},
		{
			name: "no default",
			ini:  "; comment\n[Profile0]\nPath=x\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ini := filepath.Join(t.TempDir(), "profiles.ini")
			writeFile(t, ini, tt.ini)
			want := ""
			if tt.want != "" {
				want = filepath.Join(filepath.Dir(ini), tt.want)
			}
			if got := parseProfilesIni(ini); got != want {
				t.Errorf("parseProfilesIni = %q, want %q", got, want)
			}
		})
	}
	if got := parseProfilesIni("/nonexistent/profiles.ini"); got != "" {
		t.Errorf("missing file = %q", got)
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("WARPCRAWL_TEST_APPDATA", "/appdata")
	if got := expand("~/a/b", "/home/u"); got != filepath.FromSlash("/home/u/a/b") {
		t.Errorf("expand(~) = %q", got)
	}
	if got := expand("%WARPCRAWL_TEST_APPDATA%/x", ""); got != filepath.FromSlash("/appdata/x") {
		t.Errorf("expand(%%VAR%%) = %q", got)
	}
}

func TestDetectIn(t *testing.T) {
	home := t.TempDir()
	future := time.Now().Add(time.Hour).Unix()

	profile := filepath.Join(home, ".mozilla", "firefox", "p.default")
	if err := os.MkdirAll(profile, 0755); err != nil {
		t.Fatal(err)
	}
	createStore(t, profile, firefoxSchema, []cookieRow{{"sid", "ff", ".vol.moe", "/", future, 0, 0}})
	writeFile(t, filepath.Join(home, ".mozilla", "firefox", "profiles.ini"), "[Profile0]\nPath=p.default\nDefault=1\n")

	chromeDir := filepath.Join(home, "chrome")
	if err := os.MkdirAll(chromeDir, 0755); err != nil {
		t.Fatal(err)
	}
	createStore(t, chromeDir, chromeSchema, []cookieRow{{"sid", "cr", ".vol.moe", "/", future, 0, 0}})

	browsers := []browser{
		{name: "Missing", files: []string{"~/nope/Cookies"}},
		{name: "Firefox", profiles: []string{"~/.mozilla/firefox/profiles.ini"}},
		{name: "Chrome", files: []string{"~/chrome/Cookies"}},
	}
	im := NewImporter(nil)
	got, src, err := im.detectIn("vol.moe", home, browsers)
	if err != nil {
		t.Fatalf("detectIn: %v", err)
	}
	if src.Browser != "Firefox" || len(got) != 1 || got[0].Value != "ff" {
		t.Errorf("got %v from %+v, want firefox cookie", got, src)
	}

	got, src, err = im.detectIn("vol.moe", home, browsers[2:])
	if err != nil || src.Browser != "Chrome" || got[0].Value != "cr" {
		t.Errorf("chrome detect = %v %+v %v", got, src, err)
	}

	if _, _, err := im.detectIn("vol.moe", home, browsers[:1]); !errors.Is(err, ErrNoBrowserStore) {
		t.Errorf("err = %v, want ErrNoBrowserStore", err)
	}
}

func TestBrowserTableCoversPlatforms(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		list := browserTable[goos]
		if len(list) == 0 || list[0].name != "Firefox" {
			t.Errorf("%s: first browser is not Firefox", goos)
		}
	}
}

// Package extract turns vol.moe pages into structured records with goquery.
package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/warpdl/warpcrawl/internal/fetch"
)

var (
	sizeRe    = regexp.MustCompile(`(\d+\.\d+M \(\d+頁\))`)
	captchaRe = regexp.MustCompile(`captcha_show\('(.+?)'\)`)
)

// Chapter is one downloadable volume or chapter of a comic. Any field may
// be empty when the page lacks it.
type Chapter struct {
	Name string
	// Size is the advisory size text, e.g. "12.34M (200頁)".
	Size        string
	DownloadURL string
}

// Comic is the detail page of one followed item.
type Comic struct {
	Name     string
	NameEn   string
	URL      string
	Chapters []Chapter
}

// Document parses the body of page.
func Document(page *fetch.Page) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, err
	}
	doc.Url = page.URL
	return doc, nil
}

// FollowList returns the detail URLs linked from the follow page, in page
// order and without duplicates.
func FollowList(doc *goquery.Document, host string) []string {
	prefix := strings.TrimSuffix(host, "/") + "/c/"
	seen := make(map[string]bool)
	var urls []string
	doc.Find("td > a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(href, prefix) || seen[href] {
			return
		}
		seen[href] = true
		urls = append(urls, href)
	})
	return urls
}

// ParseComic reads the detail page. Download paths are made absolute with
// host.
func ParseComic(doc *goquery.Document, host string) *Comic {
	author := doc.Find(`td[class="author"]`).First().ChildrenFiltered("font")
	c := &Comic{
		Name:   strings.TrimSpace(author.Eq(0).Text()),
		NameEn: stripParens(strings.TrimSpace(author.Eq(4).Text())),
	}
	if doc.Url != nil {
		c.URL = doc.Url.String()
	}
	host = strings.TrimSuffix(host, "/")
	rows := doc.Find(`#div_tabdata[class="book_list"]`).ChildrenFiltered("tbody").ChildrenFiltered("tr")
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() != 5 {
			return
		}
		c.Chapters = append(c.Chapters,
			parseChapter(cells.Eq(0), cells.Eq(1), host),
			parseChapter(cells.Eq(3), cells.Eq(4), host),
		)
	})
	return c
}

func parseChapter(info, link *goquery.Selection, host string) Chapter {
	ch := Chapter{
		Name: strings.TrimSpace(info.ChildrenFiltered(`b[title*="製作"]`).First().Text()),
	}
	info.ChildrenFiltered("font.filesize").EachWithBreak(func(_ int, f *goquery.Selection) bool {
		if m := sizeRe.FindStringSubmatch(f.Text()); m != nil {
			ch.Size = m[1]
			return false
		}
		return true
	})
	link.ChildrenFiltered(`a[onclick*="captcha_show"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), "下載") {
			return true
		}
		onclick, _ := a.Attr("onclick")
		if m := captchaRe.FindStringSubmatch(onclick); m != nil {
			ch.DownloadURL = host + strings.TrimSpace(m[1])
			return false
		}
		return true
	})
	return ch
}

func stripParens(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s[1 : len(s)-1]
	}
	return s
}

package crawler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/warpdl/warpcrawl/internal/extract"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

var nameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// BuildTasks keeps the chapters that have both a name and a download URL
// and numbers them from 0 in page order. The destination is
// root/<comic>/[i]-<chapter>.epub.
func BuildTasks(c *extract.Comic, root string) []warplib.DownloadTask {
	var tasks []warplib.DownloadTask
	i := 0
	dir := filepath.Join(root, safeName(c.Name))
	for _, ch := range c.Chapters {
		if ch.Name == "" || ch.DownloadURL == "" {
			continue
		}
		tasks = append(tasks, warplib.DownloadTask{
			SourceURL:       ch.DownloadURL,
			DestinationPath: filepath.Join(dir, fmt.Sprintf("[%d]-%s.epub", i, safeName(ch.Name))),
			ExpectedSize:    ch.Size,
			DisplayName:     c.Name + " - " + ch.Name,
		})
		i++
	}
	return tasks
}

// safeName keeps a page-supplied name inside its directory.
func safeName(s string) string {
	s = nameReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

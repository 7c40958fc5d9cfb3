// Package crawler drives a crawl: it walks the follow list of a site,
// extracts every followed item and downloads its chapters one after the
// other through the transfer engine.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/warpcrawl/internal/auth"
	"github.com/warpdl/warpcrawl/internal/extract"
	"github.com/warpdl/warpcrawl/internal/fetch"
	"github.com/warpdl/warpcrawl/pkg/credman"
	"github.com/warpdl/warpcrawl/pkg/logger"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

// Options are the runtime settings of one crawl job.
type Options struct {
	Credentials credman.Credentials
	// Proxy overrides the direct connection for pages and downloads.
	Proxy       string
	DownloadDir string
	Store       *credman.SessionStore
	Logger      logger.Logger
	Handlers    *warplib.Handlers
	// MaxBytesPerSecond limits each download; 0 means unlimited.
	MaxBytesPerSecond int64
	// RequestsPerSecond limits page requests; 0 means unlimited.
	RequestsPerSecond float64
	UserAgent         string
	Fs                afero.Fs
}

// Pager fetches a page and hands it to a continuation; *auth.Interceptor
// is the implementation.
type Pager interface {
	Fetch(ctx context.Context, req auth.Request, cont auth.Continuation) error
}

// Downloader is implemented by *warplib.Engine.
type Downloader interface {
	Download(ctx context.Context, task warplib.DownloadTask, jar http.CookieJar) (warplib.Result, error)
}

type Crawler struct {
	spider      Spider
	downloadDir string
	session     *credman.Session
	pages       Pager
	engine      Downloader
	l           logger.Logger
}

// New wires the request layer, the interceptor and the engine for spider.
// Missing credentials and an unreadable cookie file are fatal here.
func New(spider Spider, opts Options) (*Crawler, error) {
	if err := opts.Credentials.Validate(); err != nil {
		return nil, err
	}
	l := logger.OrNop(opts.Logger)
	store := opts.Store
	if store == nil {
		store = credman.NewSessionStore(credman.StoreOptions{Logger: l})
	}
	session, err := credman.OpenSession(store, spider.Name)
	if err != nil {
		return nil, err
	}
	httpClient, err := warplib.NewHTTPClientWithProxy(opts.Proxy)
	if err != nil {
		return nil, fmt.Errorf("proxy %q: %w", opts.Proxy, err)
	}
	classifier, err := fetch.NewLoginPageClassifier(spider.LoginPageURL)
	if err != nil {
		return nil, err
	}
	client, err := fetch.New(fetch.Options{
		HTTPClient:        httpClient,
		UserAgent:         opts.UserAgent,
		RequestsPerSecond: opts.RequestsPerSecond,
		Burst:             1,
		Classifier:        classifier,
		Logger:            l,
	})
	if err != nil {
		return nil, err
	}
	interceptor, err := auth.New(client, session, auth.Options{
		LoginURL:    spider.LoginURL,
		Credentials: opts.Credentials,
		Logger:      l,
	})
	if err != nil {
		return nil, err
	}
	engine := warplib.NewEngine(&warplib.EngineOpts{
		Client:            httpClient,
		Fs:                opts.Fs,
		Logger:            l,
		UserAgent:         opts.UserAgent,
		Handlers:          opts.Handlers,
		MaxBytesPerSecond: opts.MaxBytesPerSecond,
	})
	return NewWithDeps(spider, opts.DownloadDir, session, interceptor, engine, l), nil
}

// NewWithDeps builds a crawler from already constructed parts.
func NewWithDeps(spider Spider, downloadDir string, session *credman.Session, pages Pager, engine Downloader, l logger.Logger) *Crawler {
	if downloadDir == "" {
		downloadDir = DefaultDownloadDir
	}
	return &Crawler{
		spider:      spider,
		downloadDir: downloadDir,
		session:     session,
		pages:       pages,
		engine:      engine,
		l:           logger.OrNop(l),
	}
}

func (c *Crawler) Spider() Spider {
	return c.spider
}

// Run crawls the follow list once. Download failures are recorded in the
// report and never stop the crawl; only a failing follow-list fetch or a
// cancelled ctx ends it early.
func (c *Crawler) Run(ctx context.Context) (*Report, error) {
	report := &Report{Spider: c.spider.Name, Started: time.Now()}
	defer func() { report.Finished = time.Now() }()

	var items []string
	err := c.pages.Fetch(ctx, auth.Request{URL: c.spider.StartURL}, func(_ context.Context, page *fetch.Page) error {
		doc, err := extract.Document(page)
		if err != nil {
			return err
		}
		items = extract.FollowList(doc, c.spider.Host)
		return nil
	})
	if err != nil {
		c.l.Error("%s: follow list: %v", c.spider.Name, err)
		return report, fmt.Errorf("follow list: %w", err)
	}
	c.l.Info("%s: %d followed item(s)", c.spider.Name, len(items))

	for _, itemURL := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		item := c.crawlItem(ctx, itemURL)
		report.Items = append(report.Items, item)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	counts := report.Counts()
	c.l.Info("%s: finished, %d complete, %d skipped, %d failed, %d size-mismatch",
		c.spider.Name, counts[warplib.OutcomeComplete], counts[warplib.OutcomeSkipped],
		counts[warplib.OutcomeFailed], counts[warplib.OutcomeSizeMismatch])
	return report, nil
}

func (c *Crawler) crawlItem(ctx context.Context, itemURL string) ItemReport {
	item := ItemReport{URL: itemURL}
	err := c.pages.Fetch(ctx, auth.Request{URL: itemURL}, func(ctx context.Context, page *fetch.Page) error {
		doc, err := extract.Document(page)
		if err != nil {
			return err
		}
		comic := extract.ParseComic(doc, c.spider.Host)
		item.Name = comic.Name
		item.Results = c.downloadAll(ctx, BuildTasks(comic, c.downloadDir))
		return nil
	})
	if err != nil {
		c.l.Error("%s: %v", itemURL, err)
		item.Err = err
	}
	return item
}

// downloadAll runs tasks strictly in order; a task starts only after the
// previous Download call returned.
func (c *Crawler) downloadAll(ctx context.Context, tasks []warplib.DownloadTask) []warplib.Result {
	results := make([]warplib.Result, 0, len(tasks))
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		if err := c.session.Reload(); err != nil {
			c.l.Error("'%s': load session: %v", task.DisplayName, err)
			results = append(results, warplib.Result{Task: task, Outcome: warplib.OutcomeFailed, State: warplib.StateFailed, Err: err})
			continue
		}
		jar := c.session.Jar(credman.HostKey(task.SourceURL))
		res, err := c.engine.Download(ctx, task, jar)
		if err != nil {
			c.l.Warning("'%s': %s: %v", task.DisplayName, res.Outcome, err)
		}
		results = append(results, res)
	}
	return results
}

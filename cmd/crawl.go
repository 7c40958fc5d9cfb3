package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warpcrawl/cmd/common"
	"github.com/warpdl/warpcrawl/internal/crawler"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

var registry = crawler.DefaultRegistry

func crawl(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no spider provided"))
	} else if name == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	l, err := newLogger()
	if err != nil {
		common.PrintRuntimeErr(ctx, "crawl", "logger", err)
		return nil
	}
	defer l.Close()

	store, err := newSessionStore(l)
	if err != nil {
		common.PrintRuntimeErr(ctx, "crawl", "session_store", err)
		return nil
	}
	opts, err := crawlerOptions(l, store)
	if err != nil {
		common.PrintRuntimeErr(ctx, "crawl", "options", err)
		return nil
	}
	bars := newBarSet(os.Stdout)
	opts.Handlers = bars.Handlers()

	c, err := registry().New(name, opts)
	if err != nil {
		common.PrintRuntimeErr(ctx, "crawl", "new_spider", err)
		return nil
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	report, err := c.Run(runCtx)
	bars.Wait()
	if err != nil && report == nil {
		common.PrintRuntimeErr(ctx, "crawl", "run", err)
		return nil
	}
	printSummary(os.Stdout, report)
	if err != nil {
		common.PrintRuntimeErr(ctx, "crawl", "run", err)
	}
	return nil
}

// printSummary writes per-outcome counts and the items that failed.
func printSummary(w io.Writer, r *crawler.Report) {
	if r == nil {
		return
	}
	counts := r.Counts()
	outcomes := make([]warplib.Outcome, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })

	fmt.Fprintf(w, "\n%s: %d item(s) in %s\n", r.Spider, len(r.Items), r.Finished.Sub(r.Started).Round(time.Second))
	for _, o := range outcomes {
		fmt.Fprintf(w, "  %-14s %d\n", o.String()+":", counts[o])
	}
	for _, item := range r.Items {
		if item.Err != nil {
			fmt.Fprintf(w, "  failed item %s: %v\n", item.URL, item.Err)
		}
	}
}

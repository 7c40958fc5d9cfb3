package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warpcrawl/cmd/common"
	rpccommon "github.com/warpdl/warpcrawl/common"
	"github.com/warpdl/warpcrawl/internal/scheduler"
	"github.com/warpdl/warpcrawl/pkg/warpcli"
)

var (
	jobProxy  string
	runDate   string
	every     time.Duration
	startTime string
	endTime   string
	cronExpr  string

	jobProxyFlag = cli.StringFlag{
		Name:        "proxy, x",
		Usage:       "proxy used by this job instead of the server's",
		Destination: &jobProxy,
	}

	triggerFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "date",
			Usage:       "run once at this RFC 3339 time",
			Destination: &runDate,
		},
		cli.DurationFlag{
			Name:        "every",
			Usage:       "run at a fixed interval, e.g. 6h",
			Destination: &every,
		},
		cli.StringFlag{
			Name:        "start",
			Usage:       "RFC 3339 start of an interval trigger (default: now)",
			Destination: &startTime,
		},
		cli.StringFlag{
			Name:        "until",
			Usage:       "RFC 3339 end of an interval trigger",
			Destination: &endTime,
		},
		cli.StringFlag{
			Name:        "cron",
			Usage:       "five-field cron expression",
			Destination: &cronExpr,
		},
	}
)

// newRPCClient is replaced in tests.
var newRPCClient = func() *warpcli.Client {
	url := rpcURL
	if url == "" {
		url = warpcli.DefaultURL()
	}
	return warpcli.NewClient(url, rpcSecret, nil)
}

func rpcContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DEF_RPC_TIMEOUT)
}

func spiders(ctx *cli.Context) error {
	client := newRPCClient()
	defer client.Close()
	rctx, cancel := rpcContext()
	defer cancel()
	client.CheckVersionMismatch(rctx, os.Stderr, currentBuildArgs.Version)
	names, err := client.ListSpiders(rctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "spiders", "list", err)
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func jobsList(ctx *cli.Context) error {
	client := newRPCClient()
	defer client.Close()
	rctx, cancel := rpcContext()
	defer cancel()
	jobs, err := client.ListJobs(rctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "jobs", "list", err)
		return nil
	}
	printJobs(os.Stdout, jobs)
	return nil
}

func printJobs(w io.Writer, jobs []rpccommon.JobInfo) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "warpcrawl: no jobs found")
		return
	}
	txt := "------------------------------------------------------------------------------------"
	txt += fmt.Sprintf("\n|%s|%s|%s|%s|", common.Beaut("Job ID", 38), common.Beaut("Spider", 10), common.Beaut("Next run", 22), common.Beaut("State", 9))
	txt += "\n|--------------------------------------|----------|----------------------|---------|"
	for _, j := range jobs {
		next := "-"
		if j.NextRunTime != nil {
			next = j.NextRunTime.Local().Format("2006-01-02 15:04:05")
		}
		state := "waiting"
		if j.Running {
			state = "running"
		}
		txt += fmt.Sprintf("\n|%s|%s|%s|%s|", common.Beaut(j.JobID, 38), common.Beaut(j.Spider, 10), common.Beaut(next, 22), common.Beaut(state, 9))
		txt += fmt.Sprintf("\n|  trigger: %s", j.Trigger)
	}
	txt += "\n------------------------------------------------------------------------------------"
	fmt.Fprintln(w, txt)
}

func jobsRun(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no spider provided"))
	}
	client := newRPCClient()
	defer client.Close()
	rctx, cancel := rpcContext()
	defer cancel()
	id, err := client.RunSpider(rctx, name, jobProxy)
	if err != nil {
		common.PrintRuntimeErr(ctx, "jobs", "run", err)
		return nil
	}
	fmt.Printf("Started %s as job %s\n", name, id)
	return nil
}

func jobsAdd(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no spider provided"))
	}
	trigger, err := triggerFromFlags()
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	client := newRPCClient()
	defer client.Close()
	rctx, cancel := rpcContext()
	defer cancel()
	id, err := client.AddJob(rctx, rpccommon.SpiderParams{Name: name, Proxy: jobProxy}, trigger)
	if err != nil {
		common.PrintRuntimeErr(ctx, "jobs", "add", err)
		return nil
	}
	fmt.Printf("Scheduled %s as job %s\n", name, id)
	return nil
}

func jobsRemove(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no job id provided"))
	}
	client := newRPCClient()
	defer client.Close()
	rctx, cancel := rpcContext()
	defer cancel()
	if err := client.RemoveJob(rctx, id); err != nil {
		common.PrintRuntimeErr(ctx, "jobs", "remove", err)
		return nil
	}
	fmt.Printf("Removed job %s\n", id)
	return nil
}

// triggerFromFlags turns exactly one of --date, --every and --cron into
// the wire trigger.
func triggerFromFlags() (rpccommon.TriggerParams, error) {
	var set []string
	if runDate != "" {
		set = append(set, "--date")
	}
	if every != 0 {
		set = append(set, "--every")
	}
	if cronExpr != "" {
		set = append(set, "--cron")
	}
	switch len(set) {
	case 0:
		return rpccommon.TriggerParams{}, errors.New("one of --date, --every or --cron is required")
	case 1:
	default:
		return rpccommon.TriggerParams{}, fmt.Errorf("conflicting triggers: %s", strings.Join(set, ", "))
	}

	switch {
	case runDate != "":
		t, err := parseTime("--date", runDate)
		if err != nil {
			return rpccommon.TriggerParams{}, err
		}
		return rpccommon.TriggerParams{Type: scheduler.KindDate, RunDate: t}, nil
	case every != 0:
		p := rpccommon.TriggerParams{Type: scheduler.KindInterval, Seconds: every.Seconds()}
		var err error
		if p.StartTime, err = parseTime("--start", startTime); err != nil {
			return rpccommon.TriggerParams{}, err
		}
		if p.EndTime, err = parseTime("--until", endTime); err != nil {
			return rpccommon.TriggerParams{}, err
		}
		return p, nil
	}
	return rpccommon.TriggerParams{Type: scheduler.KindCron, Expression: cronExpr}, nil
}

func parseTime(flag, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	return &t, nil
}

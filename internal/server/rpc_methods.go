package server

import (
	"context"
	"errors"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/warpdl/warpcrawl/common"
	"github.com/warpdl/warpcrawl/internal/api"
	"github.com/warpdl/warpcrawl/internal/crawler"
	"github.com/warpdl/warpcrawl/internal/scheduler"
	"github.com/warpdl/warpcrawl/pkg/logger"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

// Custom JSON-RPC error codes for job operations.
const (
	codeJobNotFound   = jrpc2.Code(-32001)
	codeUnknownSpider = jrpc2.Code(-32002)
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required, empty rejects every call)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string
	Commit    string
	BuildType string
}

// RPCServer exposes the job API over JSON-RPC 2.0.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	secret    string
	version   string
	commit    string
	buildType string
	api       *api.Api
	log       logger.Logger
}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, a *api.Api, l logger.Logger) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		api:       a,
		log:       logger.OrNop(l),
	}
	rs.methods = handler.Map{
		common.MethodVersion:    handler.New(rs.systemGetVersion),
		common.MethodSpiderList: handler.New(rs.spiderList),
		common.MethodSpiderRun:  handler.New(rs.spiderRun),
		common.MethodJobList:    handler.New(rs.jobList),
		common.MethodJobAdd:     handler.New(rs.jobAdd),
		common.MethodJobRemove:  handler.New(rs.jobRemove),
	}
	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

func (rs *RPCServer) spiderList(_ context.Context) (*common.SpiderListResult, error) {
	return &common.SpiderListResult{Spiders: rs.api.ListSpiders()}, nil
}

// spiderRun starts a spider now and returns the job id.
func (rs *RPCServer) spiderRun(_ context.Context, p *common.SpiderParams) (*common.JobIDResult, error) {
	if p.Name == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: name"}
	}
	id, err := rs.api.RunSpider(p.Name, p.Proxy)
	if err != nil {
		return nil, rpcError(err)
	}
	rs.log.Info("rpc: spider.run %s -> job %s", p.Name, id)
	return &common.JobIDResult{JobID: id}, nil
}

func (rs *RPCServer) jobList(_ context.Context) (*common.JobListResult, error) {
	jobs := rs.api.ListJobs()
	res := &common.JobListResult{Jobs: make([]common.JobInfo, 0, len(jobs))}
	for _, j := range jobs {
		info := common.JobInfo{
			JobID:   j.ID,
			Spider:  j.Spider,
			Proxy:   j.Proxy,
			Trigger: j.Trigger,
			Running: j.Running,
		}
		if !j.NextRunAt.IsZero() {
			next := j.NextRunAt.Truncate(time.Second)
			info.NextRunTime = &next
		}
		res.Jobs = append(res.Jobs, info)
	}
	return res, nil
}

func (rs *RPCServer) jobAdd(_ context.Context, p *common.JobAddParams) (*common.JobIDResult, error) {
	if p.Spider.Name == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: spider.name"}
	}
	id, err := rs.api.AddJob(p.Spider.Name, p.Spider.Proxy, api.TriggerFromParams(p.Trigger))
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.JobIDResult{JobID: id}, nil
}

func (rs *RPCServer) jobRemove(_ context.Context, p *common.JobIDParams) (*common.EmptyResult, error) {
	if p.JobID == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: job_id"}
	}
	if err := rs.api.RemoveJob(p.JobID); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

// rpcError maps api errors onto JSON-RPC codes.
func rpcError(err error) error {
	switch {
	case errors.Is(err, api.ErrJobNotFound):
		return &jrpc2.Error{Code: codeJobNotFound, Message: err.Error()}
	case errors.Is(err, crawler.ErrUnknownSpider):
		return &jrpc2.Error{Code: codeUnknownSpider, Message: err.Error()}
	case errors.Is(err, warplib.ErrInvalidProxyURL),
		errors.Is(err, warplib.ErrUnsupportedScheme),
		errors.Is(err, scheduler.ErrUnknownTrigger),
		errors.Is(err, scheduler.ErrDateInPast),
		errors.Is(err, scheduler.ErrInvalidInterval),
		errors.Is(err, scheduler.ErrEndBeforeStart),
		errors.Is(err, scheduler.ErrInvalidCron):
		return &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	return err
}

// Close releases the HTTP bridge.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}

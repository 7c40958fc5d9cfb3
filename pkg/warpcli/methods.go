package warpcli

import (
	"context"

	"github.com/warpdl/warpcrawl/common"
)

func (c *Client) GetDaemonVersion(ctx context.Context) (*common.VersionResult, error) {
	return call[common.VersionResult](ctx, c, common.MethodVersion, nil)
}

func (c *Client) ListSpiders(ctx context.Context) ([]string, error) {
	res, err := call[common.SpiderListResult](ctx, c, common.MethodSpiderList, nil)
	if err != nil {
		return nil, err
	}
	return res.Spiders, nil
}

// RunSpider starts name now and returns the job id.
func (c *Client) RunSpider(ctx context.Context, name, proxy string) (string, error) {
	res, err := call[common.JobIDResult](ctx, c, common.MethodSpiderRun, &common.SpiderParams{Name: name, Proxy: proxy})
	if err != nil {
		return "", err
	}
	return res.JobID, nil
}

func (c *Client) ListJobs(ctx context.Context) ([]common.JobInfo, error) {
	res, err := call[common.JobListResult](ctx, c, common.MethodJobList, nil)
	if err != nil {
		return nil, err
	}
	return res.Jobs, nil
}

func (c *Client) AddJob(ctx context.Context, spider common.SpiderParams, trigger common.TriggerParams) (string, error) {
	res, err := call[common.JobIDResult](ctx, c, common.MethodJobAdd, &common.JobAddParams{Spider: spider, Trigger: trigger})
	if err != nil {
		return "", err
	}
	return res.JobID, nil
}

func (c *Client) RemoveJob(ctx context.Context, id string) error {
	_, err := call[common.EmptyResult](ctx, c, common.MethodJobRemove, &common.JobIDParams{JobID: id})
	return err
}

package common

// JSON-RPC method names.
const (
	MethodSpiderList = "spider.list"
	MethodSpiderRun  = "spider.run"
	MethodJobList    = "job.list"
	MethodJobAdd     = "job.add"
	MethodJobRemove  = "job.remove"
	MethodVersion    = "system.getVersion"
)

// DefaultPort is the JSON-RPC port when none is configured.
const DefaultPort = 6802

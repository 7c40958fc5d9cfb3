// Package warpcli is the JSON-RPC client of the warpcrawl job API.
package warpcli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/warpdl/warpcrawl/common"
)

type Client struct {
	rpc *jrpc2.Client
}

// tokenDoer adds the bearer token to every request of the channel.
type tokenDoer struct {
	secret string
	client *http.Client
}

func (d tokenDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+d.secret)
	return d.client.Do(req)
}

// NewClient connects to the JSON-RPC endpoint at url (for example
// http://127.0.0.1:6802/jsonrpc). A nil hc uses http.DefaultClient.
func NewClient(url, secret string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	ch := jhttp.NewChannel(url, &jhttp.ChannelOptions{
		Client: tokenDoer{secret: secret, client: hc},
	})
	return &Client{rpc: jrpc2.NewClient(ch, nil)}
}

// DefaultURL returns the local endpoint on the port from the environment,
// falling back to common.DefaultPort.
func DefaultURL() string {
	port := common.DefaultPort
	if v := os.Getenv(common.PortEnv); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			port = p
		}
	}
	return fmt.Sprintf("http://127.0.0.1:%d/jsonrpc", port)
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

func call[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var res T
	if err := c.rpc.CallResult(ctx, method, params, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &res, nil
}

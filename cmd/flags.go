package cmd

import (
	"github.com/urfave/cli"
	"github.com/warpdl/warpcrawl/common"
	"github.com/warpdl/warpcrawl/internal/crawler"
	"github.com/warpdl/warpcrawl/pkg/credman"
)

var (
	userName    string
	password    string
	downloadDir string
	proxyURL    string
	userAgent   string
	maxRate     string
	reqRate     float64

	cookiesDir       string
	persistCookies   bool
	cookieKey        string
	cookiePassphrase string

	debug   bool
	logFile string

	rpcURL    string
	rpcSecret string
	port      int
	listenAll bool

	siteFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "user, u",
			Usage:       "site account name",
			EnvVar:      common.UserNameEnv,
			Destination: &userName,
		},
		cli.StringFlag{
			Name:        "password, p",
			Usage:       "site password (looked up in the system keyring when empty)",
			EnvVar:      common.PasswordEnv,
			Destination: &password,
		},
		cli.StringFlag{
			Name:        "download-dir, d",
			Usage:       "root directory of downloaded chapters",
			Value:       crawler.DefaultDownloadDir,
			EnvVar:      common.DownloadDirEnv,
			Destination: &downloadDir,
		},
		cli.StringFlag{
			Name:        "proxy, x",
			Usage:       "http, https or socks5 proxy for every request",
			EnvVar:      "HTTP_PROXY,HTTPS_PROXY",
			Destination: &proxyURL,
		},
		cli.StringFlag{
			Name:        "user-agent",
			Usage:       "override the User-Agent header",
			Destination: &userAgent,
		},
		cli.StringFlag{
			Name:        "max-rate",
			Usage:       "limit each download, e.g. 512KB or 2MB (default: unlimited)",
			Destination: &maxRate,
		},
		cli.Float64Flag{
			Name:        "requests-per-second",
			Usage:       "limit page requests (default: unlimited)",
			Destination: &reqRate,
		},
	}

	storeFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "cookies-dir",
			Usage:       "directory holding one session file per site",
			Value:       credman.DefaultDir,
			EnvVar:      common.CookiesDirEnv,
			Destination: &cookiesDir,
		},
		cli.BoolTFlag{
			Name:        "cookies-persistence",
			Usage:       "load and save site sessions between runs",
			EnvVar:      common.CookiesPersistenceEnv,
			Destination: &persistCookies,
		},
		cli.StringFlag{
			Name:        "cookie-key",
			Usage:       "hex AES key sealing the session files",
			EnvVar:      common.CookieKeyEnv,
			Destination: &cookieKey,
		},
		cli.StringFlag{
			Name:        "cookie-passphrase",
			Usage:       "passphrase sealing the session files",
			EnvVar:      common.CookiePassphraseEnv,
			Destination: &cookiePassphrase,
		},
	}

	logFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging",
			EnvVar:      common.DebugEnv,
			Destination: &debug,
		},
		cli.StringFlag{
			Name:        "log-file",
			Usage:       "also write the log to this file",
			Destination: &logFile,
		},
	}

	secretFlag = cli.StringFlag{
		Name:        "rpc-secret",
		Usage:       "bearer token of the JSON-RPC endpoint",
		EnvVar:      common.RPCSecretEnv,
		Destination: &rpcSecret,
	}

	clientFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "url",
			Usage:       "JSON-RPC endpoint of the server (default: http://127.0.0.1:<port>/jsonrpc)",
			Destination: &rpcURL,
		},
		secretFlag,
	}

	serveFlags = flagsOf(siteFlags, storeFlags, logFlags, []cli.Flag{
		secretFlag,
		cli.IntFlag{
			Name:        "port",
			Usage:       "TCP port of the JSON-RPC endpoint",
			Value:       common.DefaultPort,
			EnvVar:      common.PortEnv,
			Destination: &port,
		},
		cli.BoolFlag{
			Name:        "listen-all",
			Usage:       "listen on every interface instead of 127.0.0.1",
			Destination: &listenAll,
		},
	})

	crawlFlags = flagsOf(siteFlags, storeFlags, logFlags)

	cookiesFlags = flagsOf(storeFlags, logFlags)

	credentialsFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "password, p",
			Usage:       "password to store (read from the environment when empty)",
			EnvVar:      common.PasswordEnv,
			Destination: &password,
		},
	}
)

// flagsOf concatenates flag groups into a fresh slice.
func flagsOf(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/warpdl/warpcrawl/internal/crawler"
	"github.com/warpdl/warpcrawl/pkg/credman"
	"github.com/warpdl/warpcrawl/pkg/credman/keyring"
	"github.com/warpdl/warpcrawl/pkg/logger"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

var (
	newKeySource = func(dir string, l logger.Logger) credman.KeySource {
		return keyring.NewProvider(dir, l)
	}
	newPasswordStore = func() credman.PasswordStore { return keyring.NewKeyring() }
	dotEnvPath       = ".env"
)

// loadDotEnv reads .env from the working directory. Variables already set
// in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warpcrawl: ignoring %s: %v", dotEnvPath, err)
	}
}

// newLogger returns the console logger, teed to --log-file when set.
func newLogger() (logger.Logger, error) {
	console := logger.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags)).SetDebug(debug)
	if logFile == "" {
		return console, nil
	}
	file, err := logger.NewFileLogger(logFile, debug)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(console, file), nil
}

// newSessionStore builds the cookie store from the store flags. A sealing
// key is only resolved when persistence is on.
func newSessionStore(l logger.Logger) (*credman.SessionStore, error) {
	opts := credman.StoreOptions{
		Dir:     cookiesDir,
		Enabled: persistCookies,
		Logger:  l,
	}
	if persistCookies {
		sealer, err := credman.NewSealer(cookieKey, cookiePassphrase, newKeySource(cookiesDir, l))
		if err != nil {
			return nil, err
		}
		opts.Sealer = sealer
	}
	return credman.NewSessionStore(opts), nil
}

// crawlerOptions resolves the site flags into the options of every crawl.
func crawlerOptions(l logger.Logger, store *credman.SessionStore) (crawler.Options, error) {
	creds, err := credman.ResolveCredentials(userName, password, newPasswordStore())
	if err != nil {
		return crawler.Options{}, err
	}
	var limit int64
	if maxRate != "" {
		if limit, err = warplib.ParseSpeedLimit(maxRate); err != nil {
			return crawler.Options{}, err
		}
	}
	proxy := proxyURL
	if proxy == "" {
		proxy = warplib.ProxyFromEnv()
	}
	if proxy != "" {
		if _, err := warplib.ParseProxyURL(proxy); err != nil {
			return crawler.Options{}, err
		}
	}
	return crawler.Options{
		Credentials:       creds,
		Proxy:             proxy,
		DownloadDir:       downloadDir,
		Store:             store,
		Logger:            l,
		MaxBytesPerSecond: limit,
		RequestsPerSecond: reqRate,
		UserAgent:         userAgent,
	}, nil
}

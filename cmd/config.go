package cmd

import "time"

const (
	// DEF_SHUTDOWN_TIMEOUT bounds the graceful stop of the RPC listener.
	DEF_SHUTDOWN_TIMEOUT = 10 * time.Second
	DEF_RPC_TIMEOUT      = 30 * time.Second
)

const DESCRIPTION = `
warpcrawl logs in to vol.moe with your account, walks your follow
list and downloads every chapter that is not on disk yet. Interrupted
downloads resume where they stopped and the login session is kept
between runs.
`

const (
	CrawlDescription = `The crawl command runs a spider once in the foreground
and shows a progress bar for every chapter it downloads.
Chapters that already exist are skipped.

Example:
        warpcrawl crawl vol.moe
        warpcrawl crawl --proxy socks5://127.0.0.1:1080 vol.moe

`
	ServeDescription = `The serve command keeps the job scheduler running and
exposes it over JSON-RPC on /jsonrpc and /jsonrpc/ws. Every
request needs the bearer token given by --rpc-secret.

Example:
        WARPCRAWL_RPC_SECRET=s3cret warpcrawl serve

`
	SpidersDescription = `The spiders command lists the spiders known to a
running server.

Example:
        warpcrawl spiders

`
	JobsDescription = `The jobs command talks to a running server to list, run,
schedule and remove crawl jobs.

`
	JobsAddDescription = `The jobs add command schedules a spider with one of
three triggers: a single date, a fixed interval or a
five-field cron expression.

Example:
        warpcrawl jobs add --date 2026-12-01T08:00:00+08:00 vol.moe
        warpcrawl jobs add --every 6h vol.moe
        warpcrawl jobs add --cron "0 3 * * *" vol.moe

`
	CookiesDescription = `The cookies command manages the stored session of a site.

`
	CookiesImportDescription = `The cookies import command copies the cookies of a
site out of a browser cookie store into its saved session,
so the next crawl starts logged in. Firefox and Chrome
databases and cookies.txt files are supported; "auto"
searches the installed browsers.

Example:
        warpcrawl cookies import vol.moe auto
        warpcrawl cookies import vol.moe ~/cookies.txt

`
	CredentialsDescription = `The credentials command stores the site password in the
system keyring so it does not have to live in the
environment.

Example:
        warpcrawl credentials set me@example.com

`
)

package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/warpcrawl/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	loadDotEnv()
	app := cli.App{
		Name:                  "warpcrawl",
		HelpName:              "warpcrawl",
		Usage:                 "An authenticated crawler for vol.moe.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "warpcrawl <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "crawl",
				Aliases:                []string{"c"},
				Usage:                  "crawl a site once and download new chapters",
				ArgsUsage:              "<spider>",
				Description:            CrawlDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 crawl,
				Flags:                  crawlFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "serve",
				Aliases:            []string{"s"},
				Usage:              "run the job scheduler and the JSON-RPC endpoint",
				Description:        ServeDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             serve,
				Flags:              serveFlags,
			},
			{
				Name:               "spiders",
				Usage:              "list the spiders a server can run",
				Description:        SpidersDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             spiders,
				Flags:              clientFlags,
			},
			{
				Name:        "jobs",
				Aliases:     []string{"j"},
				Usage:       "manage the jobs of a running server",
				Description: JobsDescription,
				Subcommands: []cli.Command{
					{
						Name:               "list",
						Aliases:            []string{"l"},
						Usage:              "list scheduled and running jobs",
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             jobsList,
						Flags:              clientFlags,
					},
					{
						Name:               "run",
						Usage:              "run a spider now",
						ArgsUsage:          "<spider>",
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             jobsRun,
						Flags:              flagsOf(clientFlags, []cli.Flag{jobProxyFlag}),
					},
					{
						Name:               "add",
						Aliases:            []string{"a"},
						Usage:              "schedule a spider",
						ArgsUsage:          "<spider>",
						Description:        JobsAddDescription,
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             jobsAdd,
						Flags:              flagsOf(clientFlags, []cli.Flag{jobProxyFlag}, triggerFlags),
					},
					{
						Name:               "remove",
						Aliases:            []string{"rm"},
						Usage:              "remove a scheduled job",
						ArgsUsage:          "<job id>",
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             jobsRemove,
						Flags:              clientFlags,
					},
				},
			},
			{
				Name:        "cookies",
				Usage:       "manage stored site sessions",
				Description: CookiesDescription,
				Subcommands: []cli.Command{
					{
						Name:               "import",
						Usage:              "seed a site session from a browser cookie store",
						ArgsUsage:          "<spider> [cookie file|auto]",
						Description:        CookiesImportDescription,
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             cookiesImport,
						Flags:              cookiesFlags,
					},
				},
			},
			{
				Name:        "credentials",
				Usage:       "manage site credentials",
				Description: CredentialsDescription,
				Subcommands: []cli.Command{
					{
						Name:               "set",
						Usage:              "store a site password in the system keyring",
						ArgsUsage:          "<username>",
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             credentialsSet,
						Flags:              credentialsFlags,
					},
				},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of warpcrawl",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}

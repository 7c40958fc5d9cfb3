// Package common holds the helpers shared by the warpcrawl commands:
// chapter progress bars, help and version output, error reporting and
// table cells.
package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"
)

// VersionCmdStr is printed by the version command. Execute fills it in.
var VersionCmdStr string

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// Help prints the application help, or the help of the command named by
// the first argument.
func Help(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" || name == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	return showCommandHelp(ctx, name)
}

func GetVersion(*cli.Context) error {
	fmt.Println(VersionCmdStr)
	return nil
}

// PrintRuntimeErr reports a failed step of a command as
// "<app>: <cmd>[<step>]: <err>". ctx may be nil.
func PrintRuntimeErr(ctx *cli.Context, cmd, step string, err error) {
	if err == nil {
		return
	}
	app := os.Args[0]
	if ctx != nil {
		app = ctx.App.HelpName
	}
	fmt.Printf("%s: %s[%s]: %v\n", app, cmd, step, err)
}

// PrintErrWithCmdHelp prints err followed by the help of the running command.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErr(ctx, err, func() {
		if herr := showCommandHelp(ctx, ctx.Command.Name); herr != nil {
			fmt.Println(herr)
		}
	})
}

// PrintErrWithHelp prints err followed by the application help and exits 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErr(ctx, err, func() { showAppHelpAndExit(ctx, 1) })
}

func printErr(ctx *cli.Context, err error, help func()) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case msg == "flag: help requested":
		return Help(ctx)
	case isVersionFlag(msg):
		return GetVersion(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err)
	help()
	return nil
}

// isVersionFlag matches the parse error of a bare -v or -version.
func isVersionFlag(msg string) bool {
	for _, f := range []string{"-v", "-version", "--version"} {
		if strings.HasSuffix(msg, " "+f) {
			return true
		}
	}
	return false
}

// UsageErrorCallback is the OnUsageError hook of the app and its commands.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// Beaut centers s in a cell of width n. An odd remainder goes to the right.
func Beaut(s string, n int) string {
	pad := n - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

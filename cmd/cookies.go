package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/warpcrawl/cmd/common"
	"github.com/warpdl/warpcrawl/internal/cookies"
	"github.com/warpdl/warpcrawl/pkg/credman"
	"github.com/warpdl/warpcrawl/pkg/logger"
)

func cookiesImport(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no spider provided"))
	}
	path := ctx.Args().Get(1)
	if path == "" {
		path = cookies.Auto
	}
	if !persistCookies {
		return common.PrintErrWithCmdHelp(ctx, errors.New("cookie persistence is disabled"))
	}
	l, err := newLogger()
	if err != nil {
		common.PrintRuntimeErr(ctx, "cookies", "logger", err)
		return nil
	}
	defer l.Close()

	n, src, err := importSession(l, name, path)
	if err != nil {
		common.PrintRuntimeErr(ctx, "cookies", "import", err)
		return nil
	}
	from := src.Path
	if src.Browser != "" {
		from = fmt.Sprintf("%s (%s)", src.Browser, src.Path)
	}
	fmt.Printf("Imported %d cookie(s) for %s from %s\n", n, name, from)
	return nil
}

// importSession merges the cookies of spider name found at path into its
// saved session.
func importSession(l logger.Logger, name, path string) (int, *cookies.Source, error) {
	spider, err := registry().Spider(name)
	if err != nil {
		return 0, nil, err
	}
	host := credman.HostKey(spider.Host)
	found, src, err := cookies.NewImporter(l).Import(path, host)
	if err != nil {
		return 0, nil, err
	}
	store, err := newSessionStore(l)
	if err != nil {
		return 0, nil, err
	}
	session, err := credman.OpenSession(store, spider.Name)
	if err != nil {
		return 0, nil, err
	}
	n := session.Jar(host).Import(found)
	if err := session.Save(); err != nil {
		return 0, nil, err
	}
	return n, src, nil
}

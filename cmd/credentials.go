package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/warpcrawl/cmd/common"
)

func credentialsSet(ctx *cli.Context) error {
	user := ctx.Args().First()
	if user == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no username provided"))
	}
	if password == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no password provided, use --password or VOL_MOE_PASSWORD"))
	}
	if err := newPasswordStore().SetPassword(user, password); err != nil {
		common.PrintRuntimeErr(ctx, "credentials", "keyring", err)
		return nil
	}
	fmt.Printf("Stored the password of %s in the system keyring\n", user)
	return nil
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/istudy/dashboard/apps/shared"
	"github.com/istudy/dashboard/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	svcs *shared.Services
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  promote -email EMAIL - grant admin rights to a user")
	fmt.Fprintln(cli.out, "  token -email EMAIL   - print an API token for a user")
	fmt.Fprintln(cli.out, "  reconcile            - mark lapsed scheduled meetings as missed")
	fmt.Fprintln(cli.out, "  digest               - email advisors their students needing attention")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	promoteCmd := flag.NewFlagSet("promote", flag.ContinueOnError)
	promoteCmd.SetOutput(cli.out)
	promoteEmail := promoteCmd.String("email", "", "The user's email.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenEmail := tokenCmd.String("email", "", "The user's email.")

	switch args[1] {
	case "promote":
		if err := promoteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *promoteEmail == "" {
			promoteCmd.Usage()
			return errHelp
		}
		return cli.promote(*promoteEmail)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenEmail)
	case "reconcile":
		return cli.reconcile()
	case "digest":
		return cli.digest()
	default:
		cli.printUsage()
		return errHelp
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/istudy/dashboard/apps"
	echoapi "github.com/istudy/dashboard/apps/api/echo"
	"github.com/istudy/dashboard/core"
)

// token prints a signed API token for the user with email.
func (cli *commandLine) token(email string) error {
	usr, err := cli.svcs.Users.GetByEmail(context.Background(), email)
	if err != nil {
		if core.IsNotFound(err) {
			return apps.NewArgumentError("no user with email " + core.CleanString(email, true /* lower */))
		}
		return errors.Wrap(err, "finding user")
	}

	tok, err := echoapi.GenerateToken(cli.conf, echoapi.GetUserClaims(cli.conf, usr))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, tok)
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/istudy/dashboard/apps"
	"github.com/istudy/dashboard/core"
)

// promote grants admin rights to the user with email.
func (cli *commandLine) promote(email string) error {
	email = core.CleanString(email, true /* lower */)
	if _, err := mail.ParseAddress(email); err != nil {
		return apps.NewArgumentError(fmt.Sprintf("invalid email %q", email))
	}

	usr, err := cli.svcs.Users.Promote(context.Background(), email)
	if err != nil {
		if core.IsNotFound(err) {
			return apps.NewArgumentError("no user with email " + email)
		}
		return errors.Wrap(err, "promoting user")
	}
	cli.svcs.Dashboard.InvalidateOverview(context.Background())
	fmt.Fprintf(cli.out, "%s (%s) is now an admin\n", usr.Name, usr.Email)
	return nil
}

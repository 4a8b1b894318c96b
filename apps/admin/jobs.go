package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (cli *commandLine) reconcile() error {
	n, err := cli.svcs.Meetings.ReconcileMissed(context.Background())
	if err != nil {
		return errors.Wrap(err, "reconciling meetings")
	}
	if n > 0 {
		cli.svcs.Dashboard.InvalidateOverview(context.Background())
	}
	fmt.Fprintf(cli.out, "%d meeting(s) marked missed\n", n)
	return nil
}

func (cli *commandLine) digest() error {
	n, err := cli.svcs.Dashboard.SendAttentionDigest(context.Background())
	if err != nil {
		return errors.Wrap(err, "sending attention digest")
	}
	fmt.Fprintf(cli.out, "%d digest(s) sent\n", n)
	return nil
}

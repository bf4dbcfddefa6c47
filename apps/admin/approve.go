package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trezcool/bursar/core/submission"
)

func (cli *commandLine) pending() error {
	n, err := cli.subSvc.PendingCount(context.Background())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%d pending submission(s)\n", n)
	return nil
}

// approve runs a payment approval on behalf of the reviewer with the given email.
func (cli *commandLine) approve(reviewerEmail, studentID string, meta json.RawMessage) error {
	ctx := context.Background()
	reviewer, err := cli.usrSvc.GetByEmail(ctx, reviewerEmail)
	if err != nil {
		return err
	}
	accepted, err := cli.subSvc.Approve(ctx, reviewer.ID, submission.PaymentApproval{StudentID: studentID, Meta: meta})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "accepted %d submission(s)\n", accepted)
	return nil
}

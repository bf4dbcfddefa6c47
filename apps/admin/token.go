package main

import (
	"context"
	"fmt"

	echoapi "github.com/trezcool/bursar/apps/api/echo"
)

func (cli *commandLine) token(email string) error {
	usr, err := cli.usrSvc.GetByEmail(context.Background(), email)
	if err != nil {
		return err
	}
	token, err := echoapi.GenerateToken(echoapi.NewClaims(usr, cli.conf), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, token)
	return nil
}

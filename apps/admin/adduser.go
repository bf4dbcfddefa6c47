package main

import (
	"context"
	"fmt"

	"github.com/trezcool/bursar/core/user"
)

func (cli *commandLine) addUser(name, email string, roles []string) error {
	usr, err := cli.usrSvc.Create(context.Background(), user.NewUser{Name: name, Email: email, Roles: roles})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "created user %s <%s> %v\n", usr.ID, usr.Email, usr.Roles)
	return nil
}

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/submission"
	"github.com/trezcool/bursar/core/user"
)

var (
	errHelp        = errors.New("help provided")
	errInvalidMeta = errors.New("-meta must be valid JSON")
)

type commandLine struct {
	conf   *core.Config
	db     *sqlx.DB
	out    io.Writer
	usrSvc *user.Service
	subSvc *submission.Service
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	_, _ = fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL [-roles ROLE,...] - create a user")
	_, _ = fmt.Fprintln(cli.out, "  token -email EMAIL - print an API token for the user")
	_, _ = fmt.Fprintln(cli.out, "  pending - print the number of pending submissions")
	_, _ = fmt.Fprintln(cli.out, "  approve -as EMAIL -student ID [-meta JSON] - accept the student's pending submissions")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := cli.newFlagSet("adduser")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRoles := addUserCmd.String("roles", "", "Comma separated roles, e.g. student: or employee:bursar.")

	tokenCmd := cli.newFlagSet("token")
	tokenEmail := tokenCmd.String("email", "", "The user's email.")

	approveCmd := cli.newFlagSet("approve")
	approveAs := approveCmd.String("as", "", "Email of the reviewing admin or employee.")
	approveStudent := approveCmd.String("student", "", "ID of the student.")
	approveMeta := approveCmd.String("meta", "", "JSON payment state stored on the student's profile.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, splitRoles(*addUserRoles))
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenEmail)
	case "pending":
		return cli.pending()
	case "approve":
		if err := approveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *approveAs == "" || *approveStudent == "" {
			approveCmd.Usage()
			return errHelp
		}
		var meta json.RawMessage
		if *approveMeta != "" {
			if !json.Valid([]byte(*approveMeta)) {
				return errInvalidMeta
			}
			meta = json.RawMessage(*approveMeta)
		}
		return cli.approve(*approveAs, *approveStudent, meta)
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitRoles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}

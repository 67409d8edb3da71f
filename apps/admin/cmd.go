package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/tecliberacion/campus/core/admin"
	"github.com/tecliberacion/campus/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *database.DB
	adminSvc *admin.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate                                - apply pending database migrations")
	fmt.Println("  addadmin -name NAME -email EMAIL       - create or update an admin account (password prompted)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminName := addAdminCmd.String("name", "", "The admin's display name.")
	addAdminEmail := addAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		return database.Migrate(cli.db)
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminName == "" || *addAdminEmail == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminName, *addAdminEmail, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

// addAdmin updates or creates an admin account.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	adm, err := cli.adminSvc.UpdateOrCreate(context.Background(), name, email, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("admin %q (%s) saved\n", adm.Name, adm.Email)
	return nil
}

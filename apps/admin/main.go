package main

import (
	"log"
	"os"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
	"github.com/tecliberacion/campus/storage/database"
)

// ops CLI: database migrations and admin account management.
func main() {
	conf := core.NewConfig()

	db, err := database.Open(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	cli := &commandLine{
		db:       db,
		adminSvc: admin.NewService(database.NewAdminRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

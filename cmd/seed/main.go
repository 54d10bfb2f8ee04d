// Command seed provisions the default accounts on a fresh installation:
// one admin, one doctor and one receptionist. Existing accounts are left
// untouched, so the command is safe to re-run.
//
// With -i the admin password is read from the terminal without echo instead
// of using the development default.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/clinicore/clinicore/internal/app"
	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/config"
	"github.com/clinicore/clinicore/internal/flagx"
	"github.com/clinicore/clinicore/internal/models"
)

type account struct {
	username string
	password string
	role     models.Role
}

// defaultAccounts returns a fresh slice so interactive password entry never
// leaks into shared state.
func defaultAccounts() []account {
	return []account{
		{"admin", "admin123", models.RoleAdmin},
		{"doctor1", "doctor123", models.RoleDoctor},
		{"reception1", "reception123", models.RoleReceptionist},
	}
}

func main() {
	// Only -i is handled here; config flags are parsed by config.LoadConfig.
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	interactive := fs.Bool("i", false, "prompt for the admin password instead of using the default")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-i"})); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close() }()

	accounts := defaultAccounts()
	if *interactive {
		pw, err := promptPassword("Enter admin password: ")
		if err != nil {
			log.Printf("reading password: %v", err)
			os.Exit(1)
		}
		accounts[0].password = string(pw)
		common.WipeByteArray(pw)
	}

	for _, acc := range accounts {
		_, err := a.Users.CreateUser(ctx, acc.username, acc.password, string(acc.role))
		switch {
		case err == nil:
			fmt.Printf("created %s (%s)\n", acc.username, acc.role)
		case errors.Is(err, common.ErrDuplicateUsername):
			fmt.Printf("skipped %s: already exists\n", acc.username)
		default:
			log.Printf("creating %s: %v", acc.username, err)
			os.Exit(1)
		}
	}
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	return pw, err
}

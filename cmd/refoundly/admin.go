package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/config"
)

// readPassword is swapped out in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

const createAdminUsage = `Usage: refoundly create-admin -email <address> -name <name> [flags]

Flags:
  -email <address>      admin login email (required)
  -name <name>          display name (required)
  -contact <number>     contact number
  -d, -db <path>        SQLite database path (default: $REFOUNDLY_DB or refoundly.sqlite3)

The password is read from the terminal without echo, or from the first
line of standard input when it is not a terminal.
`

type createAdminFlags struct {
	dbPath  string
	email   string
	name    string
	contact string
}

// parseCreateAdmin reads the create-admin flags. The database path defaults
// to the one serve and migrate would use.
func parseCreateAdmin(args []string, getenv func(string) string) (*createAdminFlags, error) {
	cfg, err := config.Load(nil, getenv)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	f := &createAdminFlags{}
	fs.StringVar(&f.dbPath, "db", cfg.DBPath, "")
	fs.StringVar(&f.dbPath, "d", cfg.DBPath, "")
	fs.StringVar(&f.email, "email", "", "")
	fs.StringVar(&f.name, "name", "", "")
	fs.StringVar(&f.contact, "contact", "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if f.email == "" || f.name == "" {
		return nil, errors.New("-email and -name are required")
	}
	return f, nil
}

func cmdCreateAdmin(args []string) error {
	f, err := parseCreateAdmin(args, os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stdout, createAdminUsage)
		return err
	}
	if err != nil {
		fmt.Fprint(os.Stderr, createAdminUsage)
		return err
	}

	password, err := promptPassword(os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDatabase(ctx, f.dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	admin, err := auth.CreateAdmin(ctx, database, f.name, f.email, password, f.contact)
	if err != nil {
		return err
	}
	fmt.Printf("Admin account created: %s (id %d)\n", admin.Email, admin.ID)
	return nil
}

// promptPassword reads the new password twice from a terminal, or once
// from a non-interactive stdin.
func promptPassword(in *os.File, w io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	first, err := readSecret(fd, w, "Password: ")
	if err != nil {
		return "", err
	}
	second, err := readSecret(fd, w, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func readSecret(fd int, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

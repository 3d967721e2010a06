// Command adminctl provisions admin accounts for the order bot.
//
//	adminctl setup -email owner@shop.example -password ... [-name "Shop Owner"]
//	adminctl grant -email clerk@shop.example
//	adminctl link  -email owner@shop.example -telegram-id 123456789
//
// ADMIN_EMAIL and ADMIN_PASSWORD are used when the flags are omitted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dejobratic/orderbot/internal/admins"
	"github.com/dejobratic/orderbot/internal/config"
	"github.com/dejobratic/orderbot/internal/database"
	"github.com/dejobratic/orderbot/internal/telemetry"
)

const usage = "usage: adminctl <setup|grant|link> [flags]"

func main() {
	logger := telemetry.NewLogger(os.Stderr, slog.LevelInfo, slog.String("service", "adminctl"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "adminctl:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cmd, err := parseCommand(args[0], args[1:])
	if err != nil {
		return err
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("loading database config: %w", err)
	}
	if dbCfg.Driver != config.DriverPostgres {
		return fmt.Errorf("adminctl needs STORE_DRIVER=%s, got %s", config.DriverPostgres, dbCfg.Driver)
	}

	pool, err := database.NewPool(ctx, dbCfg.URL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if dbCfg.AutoMigrate {
		if err := database.RunMigrations(dbCfg.URL, dbCfg.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	return cmd.exec(ctx, admins.NewProvisioner(admins.NewPostgresStore(pool), logger), out)
}

type command struct {
	name       string
	email      string
	password   string
	fullName   string
	telegramID int64
}

func parseCommand(name string, args []string) (*command, error) {
	cmd := &command{name: name}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cmd.email, "email", os.Getenv("ADMIN_EMAIL"), "admin account email")

	switch name {
	case "setup":
		fs.StringVar(&cmd.password, "password", os.Getenv("ADMIN_PASSWORD"), "admin account password")
		fs.StringVar(&cmd.fullName, "name", "Admin User", "display name")
	case "grant":
	case "link":
		fs.Int64Var(&cmd.telegramID, "telegram-id", 0, "Telegram user id to link")
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", name, usage)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.email == "" {
		return nil, errors.New("-email or ADMIN_EMAIL is required")
	}
	if name == "link" && cmd.telegramID == 0 {
		return nil, errors.New("-telegram-id is required")
	}
	return cmd, nil
}

func (c *command) exec(ctx context.Context, p *admins.Provisioner, out io.Writer) error {
	switch c.name {
	case "setup":
		user, created, err := p.Setup(ctx, c.email, c.password, c.fullName)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(out, "created admin %s (%s)\n", user.Email, user.ID)
		} else {
			fmt.Fprintf(out, "admin %s already exists; admin role ensured\n", user.Email)
		}
	case "grant":
		granted, err := p.Grant(ctx, c.email)
		if err != nil {
			return err
		}
		if granted {
			fmt.Fprintf(out, "granted admin role to %s\n", c.email)
		} else {
			fmt.Fprintf(out, "%s already has the admin role\n", c.email)
		}
	case "link":
		if err := p.Link(ctx, c.email, c.telegramID); err != nil {
			return err
		}
		fmt.Fprintf(out, "linked telegram id %d to %s\n", c.telegramID, c.email)
	}
	return nil
}

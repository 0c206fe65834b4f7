package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	jwttoken "coopreg/internal/jwt_token"
	"coopreg/internal/platform/config"
	"coopreg/internal/platform/logger"
	"coopreg/internal/platform/postgres"
	id "coopreg/pkg/domain"
)

func main() {
	root := &cli.Command{
		Name:  "coopreg",
		Usage: "Cooperative and society registration workflow service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides LOG_LEVEL)"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			tokenCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(ctx, cmd)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and the outbox relay",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address (overrides COOPREG_ADDR)"},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return run(ctx, cfg, logger.New(cfg.LogLevel))
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations and exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required to migrate")
			}
			migrateLogger := logger.New(cfg.LogLevel)
			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			return postgres.Migrate(ctx, db, migrateLogger)
		},
	}
}

// tokenCommand mints an access token for local testing against the API.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print a signed access token for a user, role and tenant",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "user id (random when empty)"},
			&cli.StringFlag{Name: "role", Required: true, Usage: "one of the workflow roles"},
			&cli.StringFlag{Name: "tenant", Required: true, Usage: "tenant id"},
			&cli.DurationFlag{Name: "ttl", Value: time.Hour},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			role, err := id.ParseRole(cmd.String("role"))
			if err != nil {
				return err
			}
			tenant, err := id.ParseTenantID(cmd.String("tenant"))
			if err != nil {
				return err
			}
			user := id.UserID(uuid.New())
			if raw := cmd.String("user"); raw != "" {
				if user, err = id.ParseUserID(raw); err != nil {
					return err
				}
			}
			if cfg.UsesDevSigningKey() {
				fmt.Fprintln(os.Stderr, "warning: signing with the development key")
			}
			token, err := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer).
				GenerateAccessToken(user, role, tenant, cmd.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

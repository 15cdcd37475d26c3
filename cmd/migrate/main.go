package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/internal/plans"
	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	"github.com/angelmondragon/aquaflow-backend/pkg/db"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	"github.com/angelmondragon/aquaflow-backend/pkg/migrate"
)

type flags struct {
	dir     string
	name    string
	version string
}

type command struct {
	usage  string
	needDB bool
	run    func(ctx context.Context, env *runEnv) error
}

type runEnv struct {
	cfg     *config.Config
	logg    *logger.Logger
	flags   flags
	client  *db.Client
	sqlDB   *sql.DB
	dialect string
}

var commands = map[string]command{
	"up":     {usage: "apply all pending migrations", needDB: true, run: gooseCommand("up")},
	"down":   {usage: "roll back the latest migration", needDB: true, run: gooseCommand("down")},
	"redo":   {usage: "roll back and reapply the latest migration", needDB: true, run: gooseCommand("redo")},
	"status": {usage: "print applied and pending migrations", needDB: true, run: gooseCommand("status")},
	"version": {usage: "migrate up or down to -version", needDB: true, run: func(ctx context.Context, env *runEnv) error {
		if env.flags.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, env.sqlDB, env.dialect, env.flags.dir, env.flags.version)
	}},
	"create": {usage: "write a new timestamped SQL migration named -name", run: func(ctx context.Context, env *runEnv) error {
		if env.flags.name == "" {
			return fmt.Errorf("missing -name")
		}
		target := env.flags.dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, env.flags.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	}},
	"validate": {usage: "check migration files for goose annotations", run: func(ctx context.Context, env *runEnv) error {
		if err := migrate.ValidateDir(env.flags.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}},
	"seed": {usage: "insert the default catalog and plans when the tables are empty", needDB: true, run: func(ctx context.Context, env *runEnv) error {
		productSvc, planSvc, err := storefrontServices(env.client)
		if err != nil {
			return err
		}
		for label, seed := range map[string]func(context.Context) (bool, error){
			"products": productSvc.SeedIfEmpty,
			"plans":    planSvc.SeedIfEmpty,
		} {
			seeded, err := seed(ctx)
			if err != nil {
				return fmt.Errorf("seed %s: %w", label, err)
			}
			fmt.Printf("%s: seeded=%v\n", label, seeded)
		}
		return nil
	}},
	"reset-catalog": {usage: "replace products and plans with the defaults", needDB: true, run: func(ctx context.Context, env *runEnv) error {
		productSvc, planSvc, err := storefrontServices(env.client)
		if err != nil {
			return err
		}
		products, err := productSvc.ResetDefaults(ctx)
		if err != nil {
			return fmt.Errorf("reset products: %w", err)
		}
		planList, err := planSvc.ResetDefaults(ctx)
		if err != nil {
			return fmt.Errorf("reset plans: %w", err)
		}
		fmt.Printf("restored %d products and %d plans\n", len(products), len(planList))
		return nil
	}},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var f flags
	name := flag.String("cmd", "up", "command: "+strings.Join(commandNames(), "|"))
	flag.StringVar(&f.dir, "dir", "", "goose migrations directory (empty uses the embedded set)")
	flag.StringVar(&f.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&f.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Usage = usage
	flag.Parse()

	cmd, ok := commands[*name]
	if !ok {
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *name)
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *name, "dir": f.dir})

	env := &runEnv{cfg: cfg, logg: logg, flags: f}
	if cmd.needDB {
		env.client, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to connect to database", err)
			os.Exit(1)
		}
		defer env.client.Close()
		if env.sqlDB, err = env.client.DB().DB(); err != nil {
			logg.Error(ctx, "failed to get sql handle", err)
			os.Exit(1)
		}
		env.dialect = migrate.Dialect(cfg.DB)
		ctx = logg.WithField(ctx, "dialect", env.dialect)
	}

	logg.Info(ctx, "migrate ready")
	if err := cmd.run(ctx, env); err != nil {
		logg.Error(ctx, "migrate command failed", err)
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", *name, err)
		os.Exit(1)
	}
}

func gooseCommand(name string) func(context.Context, *runEnv) error {
	return func(ctx context.Context, env *runEnv) error {
		return migrate.Run(ctx, env.sqlDB, env.dialect, env.flags.dir, name)
	}
}

func storefrontServices(client *db.Client) (catalog.Service, plans.Service, error) {
	productSvc, err := catalog.NewService(catalog.NewRepository(client.DB()), client)
	if err != nil {
		return nil, nil, err
	}
	planSvc, err := plans.NewService(plans.NewRepository(client.DB()), client)
	if err != nil {
		return nil, nil, err
	}
	return productSvc, planSvc, nil
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate -cmd=<command> [-dir=path] [-name=x] [-version=n]")
	for _, name := range commandNames() {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", name, commands[name].usage)
	}
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/istanbulinstitute/educrm-exam/internal/config"
	"github.com/istanbulinstitute/educrm-exam/internal/logger"
	"github.com/istanbulinstitute/educrm-exam/migrations"
)

func main() {
	var (
		dir   string
		steps int
	)
	flag.StringVar(&dir, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.IntVar(&steps, "steps", 0, "Number of migrations for the steps command (negative rolls back)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return
	}

	m, err := open(dir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed to initialize")
	}
	defer m.Close()

	switch cmd := args[0]; cmd {
	case "up":
		err = ignoreNoChange(m.Up())
	case "down":
		err = ignoreNoChange(m.Down())
	case "steps":
		if steps == 0 {
			log.Fatal().Msg("steps requires a non-zero -steps flag")
		}
		err = ignoreNoChange(m.Steps(steps))
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied")
			return
		}
		if verr != nil {
			log.Fatal().Err(verr).Msg("Version failed")
		}
		fmt.Printf("Version: %d, Dirty: %t\n", version, dirty)
		return
	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("force requires a version argument")
		}
		v, perr := strconv.Atoi(args[1])
		if perr != nil {
			log.Fatal().Err(perr).Msg("Invalid version")
		}
		err = m.Force(v)
	default:
		printUsage()
		return
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("Migration failed")
	}

	version, dirty, _ := m.Version()
	log.Info().Str("command", args[0]).Uint("version", version).Bool("dirty", dirty).Msg("Migration complete")
}

func open(dir, dbURL string) (*migrate.Migrate, error) {
	if dir != "" {
		return migrate.New("file://"+dir, dbURL)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", src, dbURL)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, steps, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

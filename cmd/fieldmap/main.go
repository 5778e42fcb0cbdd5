package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/DaanHessen/fieldmap-tui/internal/store"
	"github.com/DaanHessen/fieldmap-tui/internal/ui"
	"github.com/DaanHessen/fieldmap-tui/internal/util"
)

var version = "0.1.0-alpha"

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	configPath := flag.String("config", "fieldmap.yml", "YAML config file (optional)")
	driver := flag.String("store", "", "Store driver: file|postgres|sqlite|s3")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN")
	dataPath := flag.String("data", "", "Data file for the file and sqlite drivers")
	theme := flag.String("theme", "", "Color theme")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fieldmap [--config file] [--store driver] [--dsn DSN] [--data path] [--theme name] | migrate up|down | config init | version\n")
	}
	flag.Parse()

	cfg, err := util.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}
	if *dsn != "" {
		cfg.Store.DSN = *dsn
	}
	if *dataPath != "" {
		cfg.Store.Path = *dataPath
	}
	if *theme != "" {
		cfg.UI.Theme = *theme
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Println("fieldmap", version)
			return
		case "config":
			if len(args) < 2 || args[1] != "init" {
				log.Fatal("config requires 'init'")
			}
			if err := cfg.Save(*configPath); err != nil {
				log.Fatal(err)
			}
			fmt.Println("Wrote", *configPath)
			return
		case "migrate":
			if len(args) < 2 {
				log.Fatal("migrate requires 'up' or 'down'")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			migrator, err := store.NewMigrator(cfg.Store.DSN, cfg.Store.Migrations)
			if err != nil {
				log.Fatal(err)
			}
			switch args[1] {
			case "up":
				if err := migrator.Up(ctx); err != nil && err != store.ErrNoChange {
					log.Fatal(err)
				}
				fmt.Println("Migrations applied")
			case "down":
				if err := migrator.Down(ctx); err != nil && err != store.ErrNoChange {
					log.Fatal(err)
				}
				fmt.Println("Migrations rolled back")
			default:
				log.Fatal("unknown migrate action; use up|down")
			}
			return
		default:
			flag.Usage()
			os.Exit(2)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// The TUI owns the terminal; log lines go to a file from here on.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "fieldmap")
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
	}

	ctx := context.Background()
	gw, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	if err := ui.Run(ctx, gw, cfg, version); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/ironlog/internal/config"
	"github.com/meltforce/ironlog/internal/importer"
	"github.com/meltforce/ironlog/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvPath := flag.String("path", "", "CSV export file or directory of exports (required)")
	user := flag.String("user", "", "login to import for (defaults to the configured dev user)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	force := flag.Bool("force", false, "import files even if the state db says they were already imported")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironlog-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-import -config config.yaml -path export.csv [-user login] [-dry-run] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	files, err := resolveFiles(*csvPath)
	if err != nil {
		log.Error("resolving input files", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		log.Error("no .csv files found", "path", *csvPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	login := *user
	if login == "" {
		login = cfg.Auth.DevUser
	}
	uid, err := db.GetOrCreateUser(ctx, login, login)
	if err != nil {
		log.Error("resolving user", "login", login, "error", err)
		os.Exit(1)
	}
	log.Info("importing", "login", login, "files", len(files))

	// Open state database so reruns skip files already imported.
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := importer.OpenStateDB(filepath.Join(homeDir, ".ironlog"))
	if err != nil {
		log.Error("failed to open state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	failed := 0
	for _, file := range files {
		if err := importFile(ctx, db, state, log, uid, file, *dryRun, *force); err != nil {
			log.Error("import failed", "file", file, "error", err)
			failed++
		}
	}
	if failed > 0 {
		log.Error("import finished with failures", "failed", failed, "total", len(files))
		os.Exit(1)
	}
	log.Info("import complete", "files", len(files))
}

// importFile imports one CSV export, consulting the state db first.
func importFile(ctx context.Context, db *storage.DB, state *importer.StateDB, log *slog.Logger, uid int, path string, dryRun, force bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := importer.HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	if !force {
		imported, err := state.IsImported(path, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state: %w", err)
		}
		if imported {
			log.Info("skipping already-imported file", "file", path)
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	imp := importer.New(db, log, dryRun)
	stats, err := imp.Import(ctx, uid, f)
	printStats(log, path, stats)
	if err != nil {
		return err
	}

	if !dryRun {
		if err := state.MarkImported(path, info.Size(), hash); err != nil {
			return fmt.Errorf("recording state: %w", err)
		}
	}
	return nil
}

// resolveFiles expands a file or directory argument into a list of CSV files.
func resolveFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	return files, nil
}

func printStats(log *slog.Logger, file string, stats *importer.Stats) {
	log.Info("import stats",
		"file", file,
		"sessions_created", stats.SessionsCreated,
		"routines_created", stats.RoutinesCreated,
		"exercises_created", stats.ExercisesCreated,
		"sets_inserted", stats.SetsInserted,
		"rows_dropped", stats.RowsDropped,
		"groups_failed", stats.GroupsFailed,
	)
}

package upload

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/periodix/internal/ingest/alpha"
	"go.uber.org/multierr"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent     int
	WorkoutsInserted int
	SetsInserted     int

	UnknownExercises []string
}

// Uploader walks a directory of Alpha Progression CSV exports and POSTs
// every new or changed file to the Periodix server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload. A file that fails is counted and skipped; the
// returned error joins every per-file failure.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := csvFiles(u.dir)
	if err != nil {
		return &u.stats, err
	}

	var errs error
	unknown := map[string]bool{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, multierr.Append(errs, err)
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f, unknown); err != nil {
			u.log.Warn("upload failed", "file", f, "error", err)
			u.stats.FilesErrored++
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f, err))
		}
	}
	return &u.stats, errs
}

func (u *Uploader) processFile(ctx context.Context, path string, unknown map[string]bool) error {
	relPath, err := filepath.Rel(u.dir, path)
	if err != nil || relPath == "." {
		relPath = filepath.Base(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	hash := hashBytes(data)

	sent, err := u.state.IsSent(u.client.serverURL, relPath, hash)
	if err != nil {
		return fmt.Errorf("state check: %w", err)
	}
	if sent {
		u.stats.FilesSkipped++
		return nil
	}

	// Parse locally first so a malformed export never reaches the server.
	sessions, err := alpha.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if len(sessions) == 0 {
		u.stats.FilesSkipped++
		if u.dryRun {
			return nil
		}
		return u.state.MarkSent(u.client.serverURL, relPath, hash, 0)
	}

	if u.dryRun {
		u.log.Info("dry-run: would send", "file", relPath, "sessions", len(sessions))
		u.stats.SessionsSent += len(sessions)
		return nil
	}

	res, err := u.client.SendAlphaCSV(ctx, data)
	if err != nil {
		return err
	}
	u.stats.SessionsSent += res.SessionsReceived
	u.stats.WorkoutsInserted += res.WorkoutsInserted
	u.stats.SetsInserted += res.SetsInserted
	for _, name := range res.UnknownExercises {
		if !unknown[name] {
			unknown[name] = true
			u.stats.UnknownExercises = append(u.stats.UnknownExercises, name)
		}
	}

	if err := u.state.MarkSent(u.client.serverURL, relPath, hash, res.WorkoutsInserted); err != nil {
		u.log.Warn("failed to mark sent", "file", relPath, "error", err)
	}
	u.stats.FilesUploaded++
	u.log.Info("uploaded export",
		"file", relPath,
		"workouts", res.WorkoutsInserted,
		"sets", res.SetsInserted,
	)
	return nil
}

// csvFiles returns every .csv file under dir in lexical order. dir may
// also name a single file.
func csvFiles(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{dir}, nil
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

package executor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aqasim81/schema-installer/internal/database"
	"github.com/aqasim81/schema-installer/internal/filestore"
	"github.com/aqasim81/schema-installer/internal/migration"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ProgressEvent is emitted by the executor for each schema file processed.
type ProgressEvent struct {
	File     *migration.SchemaFile
	Status   string
	Duration time.Duration
	Error    error
}

// Result is what a batch produced. Every identifier handed to Execute is
// in Processed, whether or not it failed.
type Result struct {
	Processed []string
	Failed    []string // identifiers with an error, in execution order
	Errors    map[string]error
}

// OK reports whether every file was applied without error.
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// readFunc loads a schema file by identifier.
type readFunc func(id string) (migration.SchemaFile, error)

// sqlExecFunc submits a single schema file's SQL.
type sqlExecFunc func(ctx context.Context, f *migration.SchemaFile) error

// Executor applies an ordered batch of schema files, one after the other,
// on a single database connection.
type Executor struct {
	db         database.Executor
	onProgress func(ProgressEvent)
	logger     *log.Logger
	readFile   readFunc
	execSQL    sqlExecFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithProgressCallback sets a function called for each schema file processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an Executor that reads files from store below root and runs
// them through db.
func New(db database.Executor, store filestore.Store, root string, opts ...Option) *Executor {
	e := &Executor{db: db}

	for _, opt := range opts {
		opt(e)
	}

	// Set defaults for injectable functions after options are applied.
	if e.readFile == nil {
		e.readFile = func(id string) (migration.SchemaFile, error) {
			return migration.ReadSchemaFile(store, root, id)
		}
	}

	if e.execSQL == nil {
		e.execSQL = e.executeFile
	}

	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}

	return e
}

// Execute attempts every identifier in ids, in order, exactly once.
// A failing file does not stop the batch; its error is recorded and the
// next file runs. Changes made by files that did succeed stay in the
// database either way.
func (e *Executor) Execute(ctx context.Context, ids []string) *Result {
	res := &Result{
		Processed: make([]string, 0, len(ids)),
		Errors:    make(map[string]error),
	}

	for _, id := range ids {
		res.Processed = append(res.Processed, id)

		if err := e.applyOne(ctx, id); err != nil {
			res.Failed = append(res.Failed, id)
			res.Errors[id] = err
		}
	}

	return res
}

// applyOne reads, submits and reports a single file.
func (e *Executor) applyOne(ctx context.Context, id string) error {
	f, err := e.readFile(id)
	if err != nil {
		e.logger.Error("Schema file unreadable", "file", id, "err", err)
		e.fireProgress(ProgressEvent{File: &migration.SchemaFile{ID: id}, Status: StatusFailed, Error: err})

		return err
	}

	if strings.TrimSpace(f.SQL) == "" {
		e.logger.Debug("Schema file is empty, nothing to run", "file", id)
		e.fireProgress(ProgressEvent{File: &f, Status: StatusSkipped})

		return nil
	}

	e.fireProgress(ProgressEvent{File: &f, Status: StatusStarting})

	start := time.Now()
	execErr := e.execSQL(ctx, &f)
	duration := time.Since(start)

	if execErr != nil {
		e.logger.Error("Schema file failed", "file", id, "duration", duration, "err", execErr)
		e.fireProgress(ProgressEvent{
			File:     &f,
			Status:   StatusFailed,
			Duration: duration,
			Error:    execErr,
		})

		return execErr
	}

	e.logger.Debug("Schema file applied", "file", id, "checksum", f.Checksum, "duration", duration)
	e.fireProgress(ProgressEvent{
		File:     &f,
		Status:   StatusCompleted,
		Duration: duration,
	})

	return nil
}

func (e *Executor) executeFile(ctx context.Context, f *migration.SchemaFile) error {
	if e.db == nil {
		return fmt.Errorf("executing %s: %w", f.ID, ErrNoDatabase)
	}

	return e.db.Exec(ctx, f.SQL)
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}

// Package installer runs an installation: it works out which schema files
// a database has not received yet, applies them in order and, when the whole
// run succeeds, records them and the release version in the ledgers.
package installer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/aqasim81/schema-installer/internal/database"
	"github.com/aqasim81/schema-installer/internal/executor"
	"github.com/aqasim81/schema-installer/internal/filestore"
	"github.com/aqasim81/schema-installer/internal/ledger"
	"github.com/aqasim81/schema-installer/internal/migration"
)

// Defaults used when the matching option is not given.
const (
	DefaultVersion    = "0.1.0"
	DefaultWorkingDir = "tmp/"
	DefaultSchemaDir  = "app/schema/"
)

// DefaultExtensions are the schema file extensions picked up by default.
var DefaultExtensions = []string{"sql"} //nolint:gochecknoglobals // read-only default

// Connector opens the database connection used by a run. It is only called
// when there is something to install.
type Connector func(ctx context.Context) (database.Executor, error)

// Connect returns a Connector for the given connection parameters.
func Connect(p database.Params) Connector {
	return func(ctx context.Context) (database.Executor, error) {
		return database.Open(ctx, p)
	}
}

// Installer holds everything a run needs. Installers share no state.
type Installer struct {
	store      filestore.Store
	connect    Connector
	version    string
	schemaDir  string
	workingDir string
	exts       []string
	before     []Hook
	after      []Hook
	logger     *log.Logger
	onProgress func(executor.ProgressEvent)
}

// Option configures an Installer.
type Option func(*Installer)

// WithVersion sets the release version recorded after a successful run.
func WithVersion(v string) Option {
	return func(i *Installer) { i.version = v }
}

// WithSchemaDir sets the directory scanned for schema files.
func WithSchemaDir(dir string) Option {
	return func(i *Installer) { i.schemaDir = dir }
}

// WithWorkingDir sets the directory holding the ledgers.
func WithWorkingDir(dir string) Option {
	return func(i *Installer) { i.workingDir = dir }
}

// WithExtensions sets the allowed schema file extensions. An empty list
// allows every file.
func WithExtensions(exts ...string) Option {
	return func(i *Installer) { i.exts = exts }
}

// WithBefore adds a hook run before the database phase.
func WithBefore(name string, fn HookFunc) Option {
	return func(i *Installer) { i.before = append(i.before, Hook{Name: name, Run: fn}) }
}

// WithAfter adds a hook run after the database phase.
func WithAfter(name string, fn HookFunc) Option {
	return func(i *Installer) { i.after = append(i.after, Hook{Name: name, Run: fn}) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// WithProgressCallback sets a function called for each schema file processed.
func WithProgressCallback(fn func(executor.ProgressEvent)) Option {
	return func(i *Installer) { i.onProgress = fn }
}

// New creates an Installer reading and writing files through store and
// obtaining its database connection from connect.
func New(store filestore.Store, connect Connector, opts ...Option) *Installer {
	i := &Installer{
		store:      store,
		connect:    connect,
		version:    DefaultVersion,
		schemaDir:  DefaultSchemaDir,
		workingDir: DefaultWorkingDir,
		exts:       DefaultExtensions,
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.logger == nil {
		i.logger = log.New(io.Discard)
	}

	return i
}

// Version returns the configured release version.
func (i *Installer) Version() string {
	return i.version
}

// SchemaLedger returns the ledger of installed schema files.
func (i *Installer) SchemaLedger() *ledger.SchemaLedger {
	return ledger.NewSchemaLedger(i.store, filepath.Join(i.workingDir, ledger.SchemaFileName), i.schemaDir)
}

// VersionLedger returns the ledger of installed versions.
func (i *Installer) VersionLedger() *ledger.VersionLedger {
	return ledger.NewVersionLedger(i.store, filepath.Join(i.workingDir, ledger.VersionFileName))
}

// IsInstalled reports whether the configured version is the one most
// recently recorded.
func (i *Installer) IsInstalled() bool {
	installed, ok := i.VersionLedger().Installed()

	return ok && installed == i.version
}

// Pending returns the identifiers of the schema files not yet installed,
// in the order they would run.
func (i *Installer) Pending() ([]string, error) {
	catalog, err := migration.ListSchemaFiles(i.store, i.schemaDir, i.exts)
	if err != nil {
		return nil, err
	}

	pending := migration.Resolve(i.schemaDir, catalog, i.SchemaLedger().Installed())

	return migration.Order(pending), nil
}

// Plan loads the pending schema files without touching the database.
func (i *Installer) Plan() ([]migration.SchemaFile, error) {
	pending, err := i.Pending()
	if err != nil {
		return nil, err
	}

	return migration.Load(i.store, i.schemaDir, pending)
}

// Install performs one run. Hook and schema failures are reported through
// the returned Outcome. Configuration and connection problems are returned
// as errors, as is a failure to record a successful run; in that last case
// the Outcome is returned too.
//
// The two ledgers are not written atomically. If the schema ledger is
// updated but the version append fails, the applied identifiers stay
// recorded and the version does not. Running Install again finds nothing
// pending, executes nothing, and records the version.
func (i *Installer) Install(ctx context.Context) (*Outcome, error) {
	out := newOutcome(i.version)

	if err := i.store.EnsureDir(i.workingDir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}

	out.Status = StatusRunning
	i.logger.Info("Installation started", "version", i.version, "schema_dir", i.schemaDir)

	i.runHooks(ctx, "before", i.before, out)

	var applied []string

	if out.Status == StatusRunning {
		var err error

		applied, err = i.installSchemas(ctx, out)
		if err != nil {
			return nil, err
		}
	}

	i.runHooks(ctx, "after", i.after, out)

	if out.Status != StatusRunning {
		i.logger.Warn("Installation failed", "failed", len(out.Failed))

		return out, nil
	}

	if err := i.commit(applied); err != nil {
		out.fail(fmt.Sprintf("%s\n%v", messageIncomplete, err))

		return out, err
	}

	out.Status = StatusSuccess
	out.Applied = applied
	i.logger.Info("Installation complete", "version", i.version, "applied", len(applied))

	return out, nil
}

// installSchemas runs the database phase and returns the identifiers it
// processed when every one of them succeeded.
func (i *Installer) installSchemas(ctx context.Context, out *Outcome) ([]string, error) {
	pending, err := i.Pending()
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		i.logger.Info("Nothing to install")
		out.Message = messageComplete

		return nil, nil
	}

	if i.connect == nil {
		return nil, ErrNoConnector
	}

	db, err := i.connect(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := db.Close(ctx); closeErr != nil {
			i.logger.Warn("Closing database connection", "err", closeErr)
		}
	}()

	exec := executor.New(db, i.store, i.schemaDir,
		executor.WithLogger(i.logger),
		executor.WithProgressCallback(i.onProgress),
	)

	res := exec.Execute(ctx, pending)

	if !res.OK() {
		for _, id := range res.Failed {
			out.recordFileError(id, res.Errors[id])
		}

		out.fail(out.fileErrorsMessage())

		return nil, nil
	}

	out.Message = messageComplete

	return res.Processed, nil
}

// commit records a successful run: schema identifiers first, then the
// version, so a failure between the two leaves only the version missing.
// A run that installed nothing and whose version is already the recorded
// one leaves both ledgers untouched.
func (i *Installer) commit(applied []string) error {
	if len(applied) == 0 && i.IsInstalled() {
		return nil
	}

	if err := i.SchemaLedger().Append(applied...); err != nil {
		return fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}

	if err := i.VersionLedger().Append(i.version); err != nil {
		return fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}

	return nil
}

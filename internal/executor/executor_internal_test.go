package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-installer/internal/migration"
)

func fakeFiles(contents map[string]string) readFunc {
	return func(id string) (migration.SchemaFile, error) {
		sql, ok := contents[id]
		if !ok {
			return migration.SchemaFile{}, errors.New("no such file")
		}

		return migration.SchemaFile{ID: id, SQL: sql, Checksum: migration.ComputeChecksum(sql)}, nil
	}
}

// recordingExec records the identifiers submitted and fails those in failing.
type recordingExec struct {
	submitted []string
	failing   map[string]error
}

func (r *recordingExec) exec(_ context.Context, f *migration.SchemaFile) error {
	r.submitted = append(r.submitted, f.ID)

	return r.failing[f.ID]
}

func newTestExecutor(files map[string]string, rec *recordingExec, events *[]ProgressEvent) *Executor {
	e := New(nil, nil, "",
		WithProgressCallback(func(ev ProgressEvent) { *events = append(*events, ev) }),
	)
	e.readFile = fakeFiles(files)
	e.execSQL = rec.exec

	return e
}

// --- fireProgress tests ---

func TestFireProgress_withCallback_callsIt(t *testing.T) {
	t.Parallel()

	var received ProgressEvent
	e := &Executor{onProgress: func(ev ProgressEvent) { received = ev }}

	e.fireProgress(ProgressEvent{File: &migration.SchemaFile{ID: "1_init.sql"}, Status: StatusStarting})

	assert.Equal(t, StatusStarting, received.Status)
	assert.Equal(t, "1_init.sql", received.File.ID)
}

func TestFireProgress_nilCallback_noPanic(t *testing.T) {
	t.Parallel()

	e := &Executor{}

	assert.NotPanics(t, func() {
		e.fireProgress(ProgressEvent{Status: StatusCompleted})
	})
}

// --- Execute tests ---

func TestExecute_allSucceed_inOrder(t *testing.T) {
	t.Parallel()

	rec := &recordingExec{}
	var events []ProgressEvent
	e := newTestExecutor(map[string]string{
		"1_init.sql": "CREATE TABLE a (id INT);",
		"2_seed.sql": "INSERT INTO a VALUES (1);",
	}, rec, &events)

	res := e.Execute(context.Background(), []string{"1_init.sql", "2_seed.sql"})

	assert.True(t, res.OK())
	assert.Equal(t, []string{"1_init.sql", "2_seed.sql"}, res.Processed)
	assert.Equal(t, []string{"1_init.sql", "2_seed.sql"}, rec.submitted)
	assert.Empty(t, res.Errors)

	require.Len(t, events, 4)
	assert.Equal(t, StatusStarting, events[0].Status)
	assert.Equal(t, StatusCompleted, events[1].Status)
	assert.Equal(t, "2_seed.sql", events[3].File.ID)
}

func TestExecute_failureDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	bErr := errors.New("syntax error")
	rec := &recordingExec{failing: map[string]error{"B.sql": bErr}}
	var events []ProgressEvent
	e := newTestExecutor(map[string]string{
		"A.sql": "CREATE TABLE a (id INT);",
		"B.sql": "CREATE TABEL b;",
		"C.sql": "CREATE TABLE c (id INT);",
	}, rec, &events)

	res := e.Execute(context.Background(), []string{"A.sql", "B.sql", "C.sql"})

	assert.False(t, res.OK())
	assert.Equal(t, []string{"A.sql", "B.sql", "C.sql"}, rec.submitted, "every file is attempted once")
	assert.Equal(t, []string{"A.sql", "B.sql", "C.sql"}, res.Processed)
	assert.Equal(t, []string{"B.sql"}, res.Failed)
	assert.ErrorIs(t, res.Errors["B.sql"], bErr)

	statuses := make([]string, 0, len(events))
	for _, ev := range events {
		statuses = append(statuses, ev.Status)
	}

	assert.Equal(t, []string{
		StatusStarting, StatusCompleted,
		StatusStarting, StatusFailed,
		StatusStarting, StatusCompleted,
	}, statuses)
}

func TestExecute_blankFileIsNotSubmitted(t *testing.T) {
	t.Parallel()

	rec := &recordingExec{}
	var events []ProgressEvent
	e := newTestExecutor(map[string]string{
		"1_empty.sql": "  \n\t",
		"2_real.sql":  "SELECT 1;",
	}, rec, &events)

	res := e.Execute(context.Background(), []string{"1_empty.sql", "2_real.sql"})

	assert.True(t, res.OK())
	assert.Equal(t, []string{"2_real.sql"}, rec.submitted)
	assert.Equal(t, []string{"1_empty.sql", "2_real.sql"}, res.Processed, "blank files still count as processed")
	assert.Equal(t, StatusSkipped, events[0].Status)
}

func TestExecute_unreadableFileIsRecorded(t *testing.T) {
	t.Parallel()

	rec := &recordingExec{}
	var events []ProgressEvent
	e := newTestExecutor(map[string]string{"2_ok.sql": "SELECT 1;"}, rec, &events)

	res := e.Execute(context.Background(), []string{"1_gone.sql", "2_ok.sql"})

	assert.Equal(t, []string{"1_gone.sql"}, res.Failed)
	assert.Equal(t, []string{"2_ok.sql"}, rec.submitted)
	assert.Equal(t, StatusFailed, events[0].Status)
	assert.Equal(t, "1_gone.sql", events[0].File.ID)
}

func TestExecute_empty_noCalls(t *testing.T) {
	t.Parallel()

	rec := &recordingExec{}
	var events []ProgressEvent
	e := newTestExecutor(nil, rec, &events)

	res := e.Execute(context.Background(), nil)

	assert.True(t, res.OK())
	assert.Empty(t, res.Processed)
	assert.Empty(t, rec.submitted)
	assert.Empty(t, events)
}

func TestExecuteFile_noDatabase(t *testing.T) {
	t.Parallel()

	e := New(nil, nil, "")

	err := e.executeFile(context.Background(), &migration.SchemaFile{ID: "1.sql", SQL: "SELECT 1;"})

	require.ErrorIs(t, err, ErrNoDatabase)
}

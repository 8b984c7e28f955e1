package sqlcheck

import (
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/schema-installer/internal/migration"
)

// Kinds of destructive statement.
const (
	KindDropTable    = "drop-table"
	KindDropSchema   = "drop-schema"
	KindDropDatabase = "drop-database"
	KindTruncate     = "truncate"
	KindDeleteAll    = "delete-all"
)

// Finding is one destructive statement.
type Finding struct {
	File      string // schema identifier
	Kind      string
	Object    string // affected table, schema or database
	StmtIndex int    // 0-based position in the file
	Message   string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: statement %d: %s (%s)", f.File, f.StmtIndex+1, f.Message, f.Object)
}

// Report is the result of checking a batch of schema files.
type Report struct {
	Checked      int
	Findings     []Finding
	SyntaxErrors map[string]error // keyed by schema identifier
	// Unparsed lists files the parser could not read when syntax errors
	// are not enforced. They are neither errors nor inspected.
	Unparsed    []string
	syntaxOrder []string
}

// Option configures Check.
type Option func(*checker)

type checker struct {
	lenient bool
}

// WithLenientSyntax stops parse failures from counting as errors. Use it
// when the target database speaks a dialect other than PostgreSQL; files
// that do parse are still inspected for destructive statements.
func WithLenientSyntax() Option {
	return func(c *checker) { c.lenient = true }
}

// SyntaxFailures returns the identifiers that failed to parse, in check order.
func (r *Report) SyntaxFailures() []string {
	return append([]string(nil), r.syntaxOrder...)
}

// Err summarizes the report as an error, or nil when the batch is clean.
// Destructive findings only count when allowDestructive is false.
func (r *Report) Err(allowDestructive bool) error {
	var errs []error

	for _, id := range r.syntaxOrder {
		errs = append(errs, fmt.Errorf("%s: %w", id, r.SyntaxErrors[id]))
	}

	if !allowDestructive {
		for _, f := range r.Findings {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDestructive, f))
		}
	}

	return errors.Join(errs...)
}

// Check parses every file and collects syntax errors and destructive
// statements. It never stops early.
func Check(files []migration.SchemaFile, opts ...Option) *Report {
	c := &checker{}
	for _, opt := range opts {
		opt(c)
	}

	r := &Report{SyntaxErrors: make(map[string]error)}

	for i := range files {
		r.Checked++

		res, err := Parse(files[i].SQL)
		if err != nil && c.lenient {
			r.Unparsed = append(r.Unparsed, files[i].ID)

			continue
		}

		if err != nil {
			r.SyntaxErrors[files[i].ID] = err
			r.syntaxOrder = append(r.syntaxOrder, files[i].ID)

			continue
		}

		for n, stmt := range res.Stmts {
			if f, ok := inspect(stmt); ok {
				f.File = files[i].ID
				f.StmtIndex = n
				r.Findings = append(r.Findings, f)
			}
		}
	}

	return r
}

func inspect(stmt *pg_query.RawStmt) (Finding, bool) {
	if stmt == nil || stmt.Stmt == nil {
		return Finding{}, false
	}

	switch node := stmt.Stmt.Node.(type) {
	case *pg_query.Node_DropStmt:
		return inspectDrop(node.DropStmt)
	case *pg_query.Node_DropdbStmt:
		return Finding{
			Kind:    KindDropDatabase,
			Object:  node.DropdbStmt.GetDbname(),
			Message: "DROP DATABASE removes every object in the database",
		}, true
	case *pg_query.Node_TruncateStmt:
		var tables []string

		for _, rel := range node.TruncateStmt.GetRelations() {
			if rv, ok := rel.Node.(*pg_query.Node_RangeVar); ok {
				tables = append(tables, tableName(rv.RangeVar))
			}
		}

		return Finding{
			Kind:    KindTruncate,
			Object:  strings.Join(tables, ", "),
			Message: "TRUNCATE removes all rows",
		}, true
	case *pg_query.Node_DeleteStmt:
		if node.DeleteStmt.GetWhereClause() != nil {
			return Finding{}, false
		}

		return Finding{
			Kind:    KindDeleteAll,
			Object:  tableName(node.DeleteStmt.GetRelation()),
			Message: "DELETE without WHERE removes all rows",
		}, true
	default:
		return Finding{}, false
	}
}

func inspectDrop(drop *pg_query.DropStmt) (Finding, bool) {
	switch drop.GetRemoveType() { //nolint:exhaustive // only data-bearing objects matter
	case pg_query.ObjectType_OBJECT_TABLE:
		return Finding{
			Kind:    KindDropTable,
			Object:  strings.Join(dropNames(drop), ", "),
			Message: "DROP TABLE permanently deletes the table and its data",
		}, true
	case pg_query.ObjectType_OBJECT_SCHEMA:
		return Finding{
			Kind:    KindDropSchema,
			Object:  strings.Join(dropNames(drop), ", "),
			Message: "DROP SCHEMA permanently deletes the schema",
		}, true
	default:
		return Finding{}, false
	}
}

// dropNames returns the dotted names of the dropped objects. Tables come as
// lists of name parts, schemas as plain strings.
func dropNames(drop *pg_query.DropStmt) []string {
	var names []string

	for _, obj := range drop.GetObjects() {
		switch n := obj.Node.(type) {
		case *pg_query.Node_List:
			var parts []string

			for _, item := range n.List.GetItems() {
				if s, ok := item.Node.(*pg_query.Node_String_); ok {
					parts = append(parts, s.String_.GetSval())
				}
			}

			if len(parts) > 0 {
				names = append(names, strings.Join(parts, "."))
			}
		case *pg_query.Node_String_:
			names = append(names, n.String_.GetSval())
		}
	}

	return names
}

func tableName(rv *pg_query.RangeVar) string {
	if rv == nil {
		return "<unknown>"
	}

	if rv.GetSchemaname() != "" {
		return rv.GetSchemaname() + "." + rv.GetRelname()
	}

	return rv.GetRelname()
}

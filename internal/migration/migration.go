package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
	"strings"
)

// SchemaFile is a single schema script discovered under the schema root.
type SchemaFile struct {
	ID       string // "sub/1_init.sql": path relative to the schema root, forward slashes
	Path     string // Location on disk
	SQL      string // Raw file contents
	Checksum string // SHA-256 hex digest of SQL
}

// Name returns the basename of the identifier.
func (f SchemaFile) Name() string {
	return path.Base(f.ID)
}

// ComputeChecksum returns the SHA-256 hex digest of the given SQL string.
func ComputeChecksum(sql string) string {
	h := sha256.Sum256([]byte(sql))

	return hex.EncodeToString(h[:])
}

// Identify converts a file path into the root-relative identifier stored in
// the schema ledger. Paths outside root are returned cleaned but otherwise
// untouched, so identifiers that are already relative pass through.
func Identify(root, p string) string {
	cleanPath := filepath.Clean(p)

	cleanRoot := filepath.Clean(root)
	if cleanRoot == "." {
		return filepath.ToSlash(cleanPath)
	}

	prefix := cleanRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	if rel, ok := strings.CutPrefix(cleanPath, prefix); ok {
		return filepath.ToSlash(rel)
	}

	return filepath.ToSlash(cleanPath)
}

// Locate is the inverse of Identify: it returns the on-disk path of id.
func Locate(root, id string) string {
	return filepath.Join(root, filepath.FromSlash(id))
}

package migration

import (
	"fmt"
	"strings"

	"github.com/aqasim81/schema-installer/internal/filestore"
)

// ListSchemaFiles returns the paths of candidate schema files under root,
// recursing into subdirectories and keeping only the allowed extensions.
// A missing root is not an error; it simply has no candidates.
func ListSchemaFiles(store filestore.Store, root string, exts []string) ([]string, error) {
	paths, err := store.List(root, exts)
	if err != nil {
		return nil, fmt.Errorf("listing schema files in %s: %w", root, err)
	}

	return paths, nil
}

// Load reads every identifier in ids from below root and returns the
// matching schema files in the same order.
func Load(store filestore.Store, root string, ids []string) ([]SchemaFile, error) {
	files := make([]SchemaFile, 0, len(ids))

	for _, id := range ids {
		f, err := ReadSchemaFile(store, root, id)
		if err != nil {
			return nil, err
		}

		files = append(files, f)
	}

	return files, nil
}

// ReadSchemaFile reads a single schema file by its identifier.
func ReadSchemaFile(store filestore.Store, root, id string) (SchemaFile, error) {
	p := Locate(root, id)

	data, err := store.Read(p)
	if err != nil {
		return SchemaFile{}, fmt.Errorf("reading schema file %s: %w", id, err)
	}

	sql := string(data)

	return SchemaFile{
		ID:       id,
		Path:     p,
		SQL:      sql,
		Checksum: ComputeChecksum(strings.TrimSpace(sql)),
	}, nil
}

package migration

// InstalledSet reports whether a schema identifier has already been applied.
type InstalledSet interface {
	Has(id string) bool
}

// Resolve returns the identifiers of the catalog paths that are not in
// installed, in catalog order. The catalog slice is not modified.
func Resolve(root string, catalog []string, installed InstalledSet) []string {
	pending := make([]string, 0, len(catalog))

	for _, p := range catalog {
		id := Identify(root, p)
		if installed != nil && installed.Has(id) {
			continue
		}

		pending = append(pending, id)
	}

	return pending
}

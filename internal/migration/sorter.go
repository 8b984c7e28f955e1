package migration

import (
	"path"
	"sort"
	"strings"
)

// Order returns a new slice of identifiers in execution order.
//
// A file named with a leading number ("3 third.sql", "010_users.sql") is
// keyed on that number and numbered files run in numeric order, so "10"
// comes after "2". Numbered files run before unnumbered ones, and
// unnumbered files are compared by identifier. The sort is stable, so
// files with equal numbers keep their input order.
func Order(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)

	keys := make(map[string]string, len(sorted))
	for _, id := range sorted {
		keys[id] = numericPrefix(path.Base(id))
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], keys[sorted[i]], sorted[j], keys[sorted[j]])
	})

	return sorted
}

// less compares two identifiers given their numeric prefixes ("" if none).
func less(a, aKey, b, bKey string) bool {
	switch {
	case aKey != "" && bKey != "":
		return compareNumeric(aKey, bKey) < 0
	case aKey != "":
		return true
	case bKey != "":
		return false
	default:
		return a < b
	}
}

// numericPrefix returns the leading run of ASCII digits in name with
// leading zeros removed ("0" for an all-zero run), or "" if name does not
// start with a digit.
func numericPrefix(name string) string {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}

	if end == 0 {
		return ""
	}

	digits := strings.TrimLeft(name[:end], "0")
	if digits == "" {
		return "0"
	}

	return digits
}

// compareNumeric compares two normalized digit strings by value without
// converting them, so arbitrarily long prefixes such as timestamps never
// overflow.
func compareNumeric(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}

		return 1
	}

	return strings.Compare(a, b)
}

package keys

import "strings"

// sep is U+001F (unit separator). Namespaces, regions, and keys must not
// contain it; Storage keys would become ambiguous.
const sep = "\x1f"

// Storage joins namespace, region, and key into one storage key.
// Region "" maps to a reserved empty segment, keeping the unscoped namespace
// distinct from every named region.
func Storage(ns, region, key string) string {
	var b strings.Builder
	b.Grow(len(ns) + len(region) + len(key) + 2)
	b.WriteString(ns)
	b.WriteString(sep)
	b.WriteString(region)
	b.WriteString(sep)
	b.WriteString(key)
	return b.String()
}

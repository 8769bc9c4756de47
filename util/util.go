package util

import "strings"

// IsHiddenFile returns true if the base name names a hidden file: one
// beginning with a dot. The special entries "." and ".." are never
// considered hidden.
func IsHiddenFile(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

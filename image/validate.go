package image

import (
	"os"
	"strings"
)

// forbiddenByte reports whether b is in the fixed set of control bytes
// and known-bad high Latin-1 bytes that the archiver is known to mangle.
func forbiddenByte(b byte) bool {
	if b < 0x20 || b == 0x7f {
		return true
	}
	return b >= 0x80 && b <= 0x9f
}

func hasForbiddenByte(s string) bool {
	for i := 0; i < len(s); i++ {
		if forbiddenByte(s[i]) {
			return true
		}
	}
	return false
}

// validateFiles applies the Validating-state checks to every path, in
// order, moving failing paths into the matching reject list. It never
// mutates the path strings themselves and preserves relative order among
// the survivors.
func validateFiles(paths []string, rejects *RejectLists) []string {
	survivors := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || !strings.HasPrefix(p, "/") || strings.Contains(p, "//") || hasForbiddenByte(p) {
			rejects.BadName = append(rejects.BadName, p)
			continue
		}

		fi, err := os.Stat(p)
		if err != nil {
			rejects.PermissionDenied = append(rejects.PermissionDenied, p)
			continue
		}

		if strings.HasSuffix(p, "/") != fi.IsDir() {
			rejects.BadName = append(rejects.BadName, p)
			continue
		}

		survivors = append(survivors, p)
	}
	return survivors
}

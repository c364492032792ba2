package dumper

import (
	"runtime"
	"strings"
)

// classicMaxPath is the Windows MAX_PATH limit that plain Win32 paths are
// subject to. Package trees routinely exceed it.
const classicMaxPath = 260

// extendedLength rewrites an absolute Windows path into \\?\ form, which
// bypasses the classic limit. Already-extended paths pass through untouched.
func extendedLength(p string) string {
	if strings.HasPrefix(p, `\\?\`) {
		return p
	}
	if strings.HasPrefix(p, `\\`) {
		return `\\?\UNC\` + p[2:]
	}
	return `\\?\` + p
}

// maybeExtend applies the extended-length rewrite only where it is needed
// and meaningful.
func maybeExtend(p string) string {
	if runtime.GOOS != "windows" || len(p) < classicMaxPath {
		return p
	}
	return extendedLength(p)
}

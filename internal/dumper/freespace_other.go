//go:build !windows

package dumper

import "errors"

func defaultFreeSpace(string) (uint64, error) {
	return 0, errors.ErrUnsupported
}

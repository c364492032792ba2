//go:build !windows

package appx

import "errors"

// ErrUnsupportedPlatform is returned for package operations outside
// Windows.
var ErrUnsupportedPlatform = errors.New("appx: packaged apps require windows")

func List() ([]Package, error) {
	return nil, ErrUnsupportedPlatform
}

func Launch(string) (uint32, error) {
	return 0, ErrUnsupportedPlatform
}

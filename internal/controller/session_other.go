//go:build !windows

package controller

import (
	"context"
	"errors"
	"time"

	"github.com/coconutbird/uwpdumper/internal/ui"
)

// ErrUnsupportedPlatform is returned for dump sessions outside Windows;
// injection and the packaged-app model only exist there.
var ErrUnsupportedPlatform = errors.New("controller: dump sessions require windows")

type SessionOptions struct {
	PID        uint32
	PayloadDLL string
	OutputDir  string
	Workers    int
	Poll       time.Duration
	AfterReady func() error
	Log        *ui.Logger
}

type SessionResult struct {
	PackageName string
	DumpPath    string
	Files       int
	Duration    time.Duration
}

func RunSession(context.Context, SessionOptions) (SessionResult, error) {
	return SessionResult{}, ErrUnsupportedPlatform
}

func LaunchAndDump(context.Context, string, SessionOptions) (SessionResult, error) {
	return SessionResult{}, ErrUnsupportedPlatform
}

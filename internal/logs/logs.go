// Package logs is the process-wide logging facade over ui.Logger, so
// packages that only emit the occasional line do not need a logger threaded
// through them.
package logs

import (
	"os"
	"sync"

	"github.com/coconutbird/uwpdumper/internal/ui"
)

var (
	initOnce sync.Once
	logger   *ui.Logger
	quiet    bool
)

func Init() {
	initOnce.Do(func() {
		logger = ui.New(ui.Options{
			Out:   os.Stdout,
			Quiet: quiet,
		})
	})
}

func L() *ui.Logger {
	Init()
	return logger
}

// SetQuiet must be called before the first log line to take effect.
func SetQuiet(q bool) {
	quiet = q
}

func Banner(title string) {
	L().Banner(title)
}

func Spacer() {
	L().Spacer()
}

func Infof(format string, args ...any) {
	L().Info(format, args...)
}

func Successf(format string, args ...any) {
	L().Success(format, args...)
}

func Warnf(format string, args ...any) {
	L().Warn(format, args...)
}

func Errorf(format string, args ...any) {
	L().Error(format, args...)
}

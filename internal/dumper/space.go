package dumper

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// InsufficientSpaceError aborts a run whose destination volume cannot hold
// the package bytes plus the safety margin.
type InsufficientSpaceError struct {
	Needed    uint64
	Available uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space: need %s, %s available",
		humanize.IBytes(e.Needed), humanize.IBytes(e.Available))
}

// requiredWithMargin adds a ten percent safety margin on top of the scanned
// byte total, covering allocation granularity and files growing mid-dump.
func requiredWithMargin(totalBytes uint64) uint64 {
	return totalBytes + totalBytes/10
}

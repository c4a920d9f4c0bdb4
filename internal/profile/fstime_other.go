//go:build !darwin && !linux

package profile

import (
	"os"
	"time"
)

// birthTime is unavailable on this platform; callers fall back to the
// modification time.
func birthTime(info os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}

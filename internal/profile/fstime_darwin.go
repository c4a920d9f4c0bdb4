//go:build darwin

package profile

import (
	"os"
	"syscall"
	"time"
)

// birthTime reports the file's creation time. Darwin records a true
// birth timestamp in stat.
func birthTime(info os.FileInfo) (time.Time, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(st.Birthtimespec.Sec), int64(st.Birthtimespec.Nsec)), true
}

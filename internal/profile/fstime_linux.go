//go:build linux

package profile

import (
	"os"
	"syscall"
	"time"
)

// birthTime reports the inode change time, the closest stand-in for a
// creation time that plain stat carries on Linux.
func birthTime(info os.FileInfo) (time.Time, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)), true
}

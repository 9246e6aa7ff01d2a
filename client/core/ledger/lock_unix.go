//go:build unix

package ledger

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile 对文件加排他锁，阻塞直到获得
func lockFile(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

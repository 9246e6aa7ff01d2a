//go:build !unix

package ledger

import "os"

// 非 unix 平台不加锁，并发调用需由使用方串行化
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
